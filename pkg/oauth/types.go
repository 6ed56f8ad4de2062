// Package oauth provides shared permission and header constants for the drinks API.
package oauth

// Permissions carried in the token's "permissions" claim.
const (
	// PermissionListDrinks allows listing drinks (short projection).
	PermissionListDrinks = "get:drinks"

	// PermissionDrinkDetail allows listing drinks with full recipes.
	PermissionDrinkDetail = "get:drinks-detail"

	// PermissionCreateDrink allows creating drinks.
	PermissionCreateDrink = "post:drinks"

	// PermissionUpdateDrink allows partially updating drinks.
	PermissionUpdateDrink = "patch:drinks"

	// PermissionDeleteDrink allows deleting drinks.
	PermissionDeleteDrink = "delete:drinks"
)

// AllPermissions lists every permission the API understands, in route order.
var AllPermissions = []string{
	PermissionListDrinks,
	PermissionDrinkDetail,
	PermissionCreateDrink,
	PermissionUpdateDrink,
	PermissionDeleteDrink,
}

// Token type constants as defined in RFC 6750.
const (
	// BearerToken is the OAuth Bearer token type.
	BearerToken = "Bearer"
)

// Claim names.
const (
	// ClaimPermissions is the custom claim carrying granted permissions.
	ClaimPermissions = "permissions"
)

// HTTP header names.
const (
	// HeaderAuthorization is the Authorization HTTP header name.
	HeaderAuthorization = "Authorization"

	// HeaderWWWAuthenticate is the WWW-Authenticate HTTP header name.
	HeaderWWWAuthenticate = "WWW-Authenticate"

	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"

	// HeaderRequestID carries the per-request correlation id.
	HeaderRequestID = "X-Request-ID"
)

// Content type constants.
const (
	// ContentTypeJSON is the application/json content type.
	ContentTypeJSON = "application/json"
)
