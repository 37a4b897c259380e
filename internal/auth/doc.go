// Package auth provides authentication and authorization for homarr-board.
//
// # JWT Tokens
//
// API clients authenticate with HS256 JWTs signed with auth.jwt_secret
// (at least MinSecretLength bytes). Tokens carry:
//
//	{"sub": "alice", "admin": true, "iat": ..., "exp": ...}
//
// The admin claim unlocks board creation, deletion, import and the admin
// sections of the manage navigation.
//
// # HTTP Middleware
//
//	HTTPAuthMiddleware(verifier, logger) // 401 without a valid bearer token
//	LocalMiddleware()                    // no secret configured: local admin
//	RequireAdminHTTP()                   // 403 unless the admin claim is set
//
// Handlers read the identity with FromContext.
package auth
