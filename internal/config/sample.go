package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# truthweaver configuration
version: "1.0"

# Truth Weaver analysis service
service:
  # Root URL; the client POSTs to <base_url>/transcribe-and-analyze
  base_url: "https://truth-weaver.onrender.com"
  # HTTP timeout for one submission; 0 waits indefinitely
  timeout: 0s
  user_agent: "truthweaver-cli"

upload:
  # Files above this size (bytes) are rejected before upload
  max_file_size: 16777216

output:
  # text | json | markdown | csv
  default_format: "text"
  # auto | always | never
  color_mode: "auto"
  verbose: false
  # default | high-contrast | minimal
  theme: "default"
  no_emoji: false

logging:
  # debug | info | warn | error
  level: "info"
  # console | json
  format: "console"
  # Logs are written here while the interactive UI is running
  file: ""

metrics:
  # Serve Prometheus metrics on this address, e.g. ":9090"; empty disables
  listen_addr: ""

# Every key can be overridden with TRUTHWEAVER_<SECTION>_<KEY>, for example
# TRUTHWEAVER_SERVICE_BASE_URL. A .env file in the current directory or a
# parent is read as well, without overriding the real environment.
`
}

// MinimalSampleConfig returns a compact configuration with essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"
service:
  base_url: "https://truth-weaver.onrender.com"
output:
  default_format: "text"
`
}
