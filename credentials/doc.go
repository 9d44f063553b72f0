// Package credentials provides request signers for httpclient.
//
// HMAC signs timestamp + method + request path + body with a shared secret
// and sends the result in CB-ACCESS-* headers. JWT mints a short-lived
// ES256 bearer token bound to the request method, host and path.
//
//	creds, err := credentials.NewJWT(keyName, privateKeyPEM)
//	client, err := httpclient.New(cfg, httpclient.WithCredentials(creds))
package credentials
