// Package douyin talks to the Douyin web API.
//
// It provides the shared session Client (cookie, browser headers and
// connection-level retries via resty), the listing endpoint builder, wire
// models for listing pages, the creator identity Resolver and the
// RequestBuilder that appends X-Bogus signatures obtained from a Signer.
//
//	client := douyin.NewClient(douyin.ClientOptions{Cookie: cookie, UserAgent: ua}, log)
//	secUID, err := douyin.NewResolver(client).Resolve(ctx, "https://v.douyin.com/iRNBho6u/")
//
//	builder := douyin.NewRequestBuilder(douyin.NewRemoteSigner(signerURL), client.UserAgent())
//	signed, err := builder.Build(ctx, douyin.PostListURL(douyin.BaseURL, secUID, 18, 0))
//
// The signature algorithm itself is out of scope; signatures come from an
// external signing service or an injected SignerFunc.
package douyin
