package common

// AccessTokenHeaderName is the HTTP header used to carry the bearer access
// token on authenticated requests.
const AccessTokenHeaderName = "Authorization"
