package configuration

type Configuration struct {
	StringPool  Pool   `usage:"pool backing the string workload"`
	VectorPool  Pool   `usage:"pool backing the vector workload"`
	Appends     int    `usage:"number of appends to the pooled string"`
	Pushes      int    `usage:"number of pushes to the pooled vector"`
	LogLevel    string `usage:"log level: debug | info | warn | error"`
	MetricsAddr string `usage:"serve Prometheus metrics on this address and wait for a signal, empty to disable"`
	Version     bool   `usage:"show version and exit"`
	ShowConfig  bool   `usage:"print config"`
}

type Pool struct {
	Capacity   int `usage:"buffer size in bytes"`
	MaxEntries int `usage:"maximum number of live reservations"`
	Alignment  int `usage:"start address alignment in bytes, 0 for pointer size"`
}

func Default() Configuration {
	return Configuration{
		StringPool: Pool{
			Capacity:   4096,
			MaxEntries: 32,
		},
		VectorPool: Pool{
			Capacity:   16000,
			MaxEntries: 32,
		},
		Appends:  100,
		Pushes:   1000,
		LogLevel: "info",
	}
}
