// Package auth builds credential headers for outbound API calls made by
// tools.
//
// A Provider produces the headers to attach to a request and can validate
// its configuration up front. Secrets come either from explicit values or
// from environment variables; a provider constructed without its secret
// fails with an AUTH_MISSING error.
//
//	p, err := auth.New(auth.KindAPIKey, auth.Options{APIKeyEnv: "WEATHER_API_KEY"})
//	if err != nil {
//		return err
//	}
//	headers, err := p.Headers()
package auth
