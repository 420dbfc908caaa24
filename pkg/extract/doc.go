// Package extract pulls Thiele-Small parameters out of free-form text, such
// as a pasted manufacturer datasheet, using a chat-completions language
// model.
//
// The model is asked for a JSON object with fs, qts and vas, omitting any
// value it cannot find. The first {...} object in the reply is parsed, so
// models that wrap the JSON in prose or a code fence still work. The result
// is sparse: [Params] holds pointers and [Params.Merge] fills only the
// parameters that were found.
//
// # Usage
//
//	c := extract.NewClient(apiKey, extract.WithCache(fileCache, nil))
//	params, err := c.Extract(ctx, datasheet)
//	if err != nil {
//	    return err
//	}
//	driver := params.Merge(enclosure.Driver{Fs: 40})
//
// Requests go to OpenRouter by default; [WithEndpoint] and [WithModel]
// point the client at any OpenAI-compatible API.
package extract
