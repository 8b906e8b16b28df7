// Package common contains shared constants and sentinel errors used across
// VaultShare components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access
// token on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// ActionDownloaded is the access-log action recorded when a recipient
// fetches a share.
const ActionDownloaded = "downloaded"
