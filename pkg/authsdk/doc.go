/*
Package authsdk is a Go client for the accounts service.

# Overview

An SDKClient performs the public operations (signup, login, email
verification, session validation and health checks). Logging in returns a
Session, which carries the bearer token for the operations that need one.

	client := authsdk.NewSDKClient("http://localhost:8080")

	signup, err := client.Signup(ctx, authsdk.SignupRequest{
		Name:     "Ann",
		Email:    "ann@example.com",
		Password: "secret1",
	})

	// The code arrives by email.
	verified, err := client.Verify(ctx, "ann@example.com", "123456")

	session, err := client.AuthenticateWithPassword(ctx, "ann@example.com", "secret1")
	me, err := session.CurrentUser(ctx)

# Route prefix

Account routes are mounted below /api/auth by default. Set SDKClient.Prefix
when the service runs with a different AUTH_ROUTE_PREFIX. Health and JWKS
routes are always at the root.

# Errors

Any non-success response is returned as an *APIError carrying the HTTP
status, a stable error code, the human readable message and, for input
validation failures, per-field messages:

	_, err := client.Signup(ctx, req)
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeDuplicateEmail {
		fmt.Println(apiErr.Errors["email"])
	}

Validate is the exception: a rejected token is reported as Valid=false with
the reason in Message, not as an error.

The same APIError values are used by the service to write its responses, so
client and server agree on codes and messages.

# Sessions

Sessions do not refresh tokens. When a request fails with ErrorCodeInvalidToken
and the message "token expired", log in again.
*/
package authsdk
