// Package githubapi talks to the GitHub REST API through go-github. Client implements gitdata.RemoteAPI
// for the Git Data endpoints and lists the repositories of organizations.
package githubapi
