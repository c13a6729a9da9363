package common

// AccessTokenHeaderName is the HTTP header used to carry the bearer access
// token on outbound requests to the authority.
const AccessTokenHeaderName = "Authorization"
