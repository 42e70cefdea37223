package media

// Task is one unit of detached generation work. It carries everything a
// worker needs so that queue-backed dispatch can run it in another process.
type Task struct {
	ID     string `json:"id"`
	ChatID uint64 `json:"chat_id"`
	Type   Type   `json:"type"`
	Index  int    `json:"index"`
	Prompt string `json:"prompt"`

	// Generator selects the adapter: "image", "video", "voice", "jingle"
	// or "text". Distinct from Type because both audio variants persist
	// as type "audio".
	Generator string `json:"generator"`
}
