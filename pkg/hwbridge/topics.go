package hwbridge

// DefaultPrefix is the topic prefix used when none is configured.
const DefaultPrefix = "vhal"

// Topics builds the bridge topic names.
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultPrefix
	}
	return t.Prefix
}

// Request is where the broker publishes hardware requests.
func (t Topics) Request() string { return t.prefix() + "/request" }

// Response is where the hardware publishes results.
func (t Topics) Response() string { return t.prefix() + "/response" }

// Event is where the hardware publishes property changes.
func (t Topics) Event() string { return t.prefix() + "/event" }
