package observability

const (
	AttrServiceName     = "service.name"
	AttrServiceVersion  = "service.version"
	AttrRequestID       = "request.id"
	AttrFramework       = "workflow.framework"
	AttrProcess         = "workflow.process"
	AttrAgentCount      = "workflow.agents"
	AttrLLMProvider     = "llm.provider"
	AttrLLMModel        = "llm.model"
	AttrLLMTokensInput  = "llm.tokens.input"
	AttrLLMTokensOutput = "llm.tokens.output"
	AttrAttempt         = "pipeline.attempt"
	AttrErrorType       = "error.type"
	AttrHTTPMethod      = "http.method"
	AttrHTTPRoute       = "http.route"
	AttrHTTPStatusCode  = "http.status_code"

	SpanGenerate    = "pipeline.generate"
	SpanBuildPrompt = "pipeline.build_prompt"
	SpanLLMRequest  = "pipeline.llm_request"
	SpanParse       = "pipeline.parse"
	SpanRender      = "pipeline.render"
	SpanHTTPRequest = "http.request"

	DefaultServiceName  = "crewforge"
	DefaultSamplingRate = 1.0
	DefaultOTLPEndpoint = "localhost:4317"
	DefaultMetricsPath  = "/metrics"
)
