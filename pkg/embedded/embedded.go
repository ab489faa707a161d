package embedded

import (
	"embed"
	"io/fs"
)

// SystemPromptTxt holds the fixed instructions sent ahead of every generation
//
//go:embed data/prompts/system_prompt.txt
var SystemPromptTxt []byte

//go:embed static
var staticFiles embed.FS

// Static returns the bundled web assets (index.html, style.css)
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// static is a compile-time directory; Sub only fails on an invalid name
		panic(err)
	}
	return sub
}
