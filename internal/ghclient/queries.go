package ghclient

// Query and mutation text is deliberately minimal; spec.md §1 scopes the
// literal GraphQL strings out ("their semantics are specified; their text
// is not"). Shapes below are just detailed enough for operations.go's
// decode structs to round-trip in tests using a mock GraphQL server.

const queryListOrgProjects = `
query ListOrgProjects($login: String!) {
  organization(login: $login) {
    projectsV2(first: 50) {
      nodes { id number title closed }
    }
  }
}`

const queryListUserProjects = `
query ListUserProjects($login: String!) {
  user(login: $login) {
    projectsV2(first: 50) {
      nodes { id number title closed }
    }
  }
}`

const scanProjectFragment = `
  items(first: 50, after: $after) {
    pageInfo { hasNextPage endCursor }
    nodes {
      id
      content {
        __typename
        ... on Issue {
          title url id
          repository { nameWithOwner }
          assignees(first: 20) { nodes { login id } }
          author { login }
          labels(first: 20) { nodes { name } }
        }
        ... on PullRequest {
          title url id
          repository { nameWithOwner }
          assignees(first: 20) { nodes { login id } }
          author { login }
          labels(first: 20) { nodes { name } }
        }
        ... on DraftIssue { title }
      }
      project { id number title url }
      fieldValues(first: 20) {
        nodes {
          __typename
          ... on ProjectV2ItemFieldDateValue {
            date
            field { ... on ProjectV2FieldCommon { name } }
          }
          ... on ProjectV2ItemFieldSingleSelectValue {
            name optionId
            field {
              ... on ProjectV2FieldCommon { id name }
              ... on ProjectV2SingleSelectField { options { id name } }
            }
          }
          ... on ProjectV2ItemFieldUserValue {
            users(first: 20) { nodes { login id } }
            field { ... on ProjectV2FieldCommon { id name } }
          }
          ... on ProjectV2ItemFieldIterationValue {
            iterationId title startDate duration
            field { ... on ProjectV2FieldCommon { name } }
          }
        }
      }
    }
  }
`

const queryScanOrgProject = `
query ScanOrgProject($org: String!, $number: Int!, $after: String) {
  organization(login: $org) {
    projectV2(number: $number) {
` + scanProjectFragment + `
    }
  }
}`

const queryScanUserProject = `
query ScanUserProject($login: String!, $number: Int!, $after: String) {
  user(login: $login) {
    projectV2(number: $number) {
` + scanProjectFragment + `
    }
  }
}`

const queryProjectFields = `
query ProjectFields($id: ID!) {
  node(id: $id) {
    ... on ProjectV2 {
      fields(first: 50) {
        nodes { ... on ProjectV2FieldCommon { id name } }
      }
    }
  }
}`

const queryFieldOptions = `
query FieldOptions($id: ID!) {
  node(id: $id) {
    ... on ProjectV2SingleSelectField { options { id name } }
    ... on ProjectV2IterationField {
      configuration { iterations { id title startDate duration } }
    }
  }
}`

const queryRepoLabels = `
query RepoLabels($owner: String!, $name: String!, $after: String) {
  repository(owner: $owner, name: $name) {
    labels(first: 100, after: $after) {
      nodes { id name }
      pageInfo { hasNextPage endCursor }
    }
  }
}`

const queryRepoAssignees = `
query RepoAssignees($owner: String!, $name: String!, $after: String) {
  repository(owner: $owner, name: $name) {
    assignableUsers(first: 100, after: $after) {
      nodes { id login }
      pageInfo { hasNextPage endCursor }
    }
  }
}`

const mutationSetSingleSelect = `
mutation SetSingleSelect($project: ID!, $item: ID!, $field: ID!, $option: String!) {
  updateProjectV2ItemFieldValue(input: {
    projectId: $project, itemId: $item, fieldId: $field,
    value: { singleSelectOptionId: $option }
  }) { projectV2Item { id } }
}`

const mutationSetDate = `
mutation SetDate($project: ID!, $item: ID!, $field: ID!, $date: Date) {
  updateProjectV2ItemFieldValue(input: {
    projectId: $project, itemId: $item, fieldId: $field,
    value: { date: $date }
  }) { projectV2Item { id } }
}`

const mutationSetIteration = `
mutation SetIteration($project: ID!, $item: ID!, $field: ID!, $iteration: String!) {
  updateProjectV2ItemFieldValue(input: {
    projectId: $project, itemId: $item, fieldId: $field,
    value: { iterationId: $iteration }
  }) { projectV2Item { id } }
}`

const mutationSetLabels = `
mutation SetLabels($item: ID!, $labels: [ID!]!) {
  updateIssue(input: { id: $item, labelIds: $labels }) { clientMutationId }
}`

const mutationSetAssignees = `
mutation SetAssignees($item: ID!, $assignees: [ID!]!) {
  updateIssue(input: { id: $item, assigneeIds: $assignees }) { clientMutationId }
}`

const mutationAddComment = `
mutation AddComment($item: ID!, $body: String!) {
  addComment(input: { subjectId: $item, body: $body }) { clientMutationId }
}`

const queryResolveURL = `
query ResolveURL($url: URI!) {
  resource(url: $url) { id }
}`

const mutationCreateItem = `
mutation CreateItem($project: ID!, $content: ID!) {
  addProjectV2ItemById(input: { projectId: $project, contentId: $content }) {
    item { id }
  }
}`
