package media

const placeholderBase = "https://image.pollinations.ai/prompt/"

func PlaceholderURL(kind Kind, prompt string) string {
	if kind == KindVideo {
		return placeholderBase + quote(prompt+" cinematic") + "?width=1280&height=720"
	}
	return placeholderBase + quote(prompt)
}

func placeholder(kind Kind, prompt string, notes []Note) Resolution {
	msg := "GIF search failed"
	if kind == KindVideo {
		msg = "Video search failed. Try different keywords."
	}
	return Resolution{
		Kind:        kind,
		Error:       msg,
		FallbackURL: PlaceholderURL(kind, prompt),
		Notes:       notes,
	}
}
