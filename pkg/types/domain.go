package types

// Model describes a model entry from the local model registry.
type Model struct {
	// Identifier sent to the daemon.
	// example: deepseek-r1:1.5b
	Name string `json:"name" yaml:"-" example:"deepseek-r1:1.5b"`
	// Human-friendly description.
	// example: DeepSeek R1 distilled, 1.5B parameters
	Description string `json:"description,omitempty" yaml:"description" example:"DeepSeek R1 distilled, 1.5B parameters"`
	// Free-form tags.
	// example: ["reasoning","small"]
	Tags []string `json:"tags,omitempty" yaml:"tags"`
	// Chat template with a single {prompt} placeholder.
	// example: <|user|>{prompt}<|assistant|>
	Template string `json:"template,omitempty" yaml:"template"`
}
