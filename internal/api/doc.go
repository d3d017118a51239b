// Package api provides the remote model client and the retry policy around it.
//
// # Architecture
//
//   - client.go: AIClient interface and the Request passed to it
//   - gemini.go: Google Gemini implementation built on google.golang.org/genai
//   - errors.go: error kinds, APIError and Classify
//   - retry.go: RetryPolicy with exponential backoff and per-attempt timeouts
//
// # Usage
//
//	client, err := api.NewGeminiClient(ctx, api.GeminiOptions{
//	    APIKey:    cfg.APIKey(),
//	    Model:     cfg.Model(),
//	    UserAgent: cfg.UserAgent(),
//	})
//	if err != nil {
//	    // handle error
//	}
//	defer client.Close()
//
//	policy := api.DefaultRetryPolicy()
//	reply, err := policy.Invoke(ctx, func(ctx context.Context) (string, error) {
//	    return client.Generate(ctx, api.Request{Prompt: "hello"})
//	})
//
// # Interface Design
//
// AIClient makes a single attempt per call. Retrying is left to RetryPolicy
// so that tests can substitute either side independently.
package api
