package config

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{
		backend:    backend,
		sqlitePath: sqlitePath,
	}
}

// NewNonceForTest creates a Nonce config for testing purposes
func NewNonceForTest(key string) *Nonce {
	return &Nonce{key: key}
}

// NewActorForTest creates an Actor config for testing purposes
func NewActorForTest(header, noAuthUID string) *Actor {
	return &Actor{header: header, noAuthUID: noAuthUID}
}

// NewActorWithProxiesForTest creates an Actor config that only trusts the given proxies
func NewActorWithProxiesForTest(header string, proxies ...string) *Actor {
	return &Actor{header: header, trustedProxies: proxies}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

var RedactFilter = redactFilter
