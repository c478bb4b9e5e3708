package values

// SyncValues are the tunables of one synchronization run. Zero values are
// replaced by Normalize so a partially filled yaml file still works.
type SyncValues struct {
	PriceMultiplier   float64 `yaml:"price-multiplier"`
	RetentionCount    int     `yaml:"retention-count"`
	WorkerPoolSize    int     `yaml:"worker-pool-size"`
	SkuChunkLimit     int     `yaml:"sku-chunk-limit"`
	PageSize          int     `yaml:"page-size"`
	QuantityThreshold int     `yaml:"quantity-threshold"`
	ConnectTimeoutMs  int     `yaml:"connect-timeout-ms"`
	ReadTimeoutMs     int     `yaml:"read-timeout-ms"`
	FetchRateLimit    int     `yaml:"fetch-rate-limit"`
}

func DefaultSyncValues() SyncValues {
	return SyncValues{
		PriceMultiplier:   1.4,
		RetentionCount:    5,
		WorkerPoolSize:    10,
		SkuChunkLimit:     50,
		PageSize:          100,
		QuantityThreshold: 25,
		ConnectTimeoutMs:  5000,
		ReadTimeoutMs:     15000,
		FetchRateLimit:    3,
	}
}

func (v SyncValues) Normalize() SyncValues {
	def := DefaultSyncValues()
	if v.PriceMultiplier <= 0 {
		v.PriceMultiplier = def.PriceMultiplier
	}
	if v.RetentionCount <= 0 {
		v.RetentionCount = def.RetentionCount
	}
	if v.WorkerPoolSize <= 0 {
		v.WorkerPoolSize = def.WorkerPoolSize
	}
	if v.SkuChunkLimit <= 0 {
		v.SkuChunkLimit = def.SkuChunkLimit
	}
	if v.PageSize <= 0 {
		v.PageSize = def.PageSize
	}
	if v.QuantityThreshold <= 0 {
		v.QuantityThreshold = def.QuantityThreshold
	}
	if v.ConnectTimeoutMs <= 0 {
		v.ConnectTimeoutMs = def.ConnectTimeoutMs
	}
	if v.ReadTimeoutMs <= 0 {
		v.ReadTimeoutMs = def.ReadTimeoutMs
	}
	if v.FetchRateLimit <= 0 {
		v.FetchRateLimit = def.FetchRateLimit
	}
	return v
}
