package config

const (
	// TopicNewsFetched is the NSQ topic carrying raw fetched articles.
	TopicNewsFetched = "news.fetched"

	// ChannelEnricher is the consumer channel for the enrichment worker.
	ChannelEnricher = "enricher"
)
