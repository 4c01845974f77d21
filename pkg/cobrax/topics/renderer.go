package topics

// Renderer formats the content of a topic for display. format is the file
// extension of the topic, including the dot.
type Renderer interface {
	Render(content string, format string) string
}

// PlainRenderer prints topics as written
type PlainRenderer struct{}

// Render returns content unchanged
func (r *PlainRenderer) Render(content string, _ string) string {
	return content
}
