package config

const (
	// TopicEmbedTask is the NSQ topic carrying ingestion jobs: direct
	// embedding of known article text or scrape-then-embed of a URL.
	TopicEmbedTask = "embed.task"

	// ChannelPipeline is the consumer channel name for the ingestion worker.
	ChannelPipeline = "pipeline"
)
