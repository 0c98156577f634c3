// Package wallabag provides the HTTP adapters for a wallabag server:
// the Transport used for API calls and the OAuth2 password-grant
// Authenticator. Both share one throttled *http.Client.
package wallabag
