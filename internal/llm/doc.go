// Package llm generates text with large language models hosted on Amazon
// Bedrock.
//
// The supported models form a closed set (see Model). Each model has a
// Profile with its Bedrock model or inference-profile identifier and the
// sampling parameters used for it. BedrockClient talks to the Bedrock
// Converse API, which accepts the same request shape for every supported
// model family, so one client serves all of them.
//
// All failures of the provider, including an empty response, are returned as
// *ProviderError and match ErrProvider with errors.Is.
package llm
