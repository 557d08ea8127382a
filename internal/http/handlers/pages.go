package handlers

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const (
	msgFrontendMissing = "Frontend not built. Run: npm run build"
	msgSomethingWrong  = "Something went wrong. Please refresh the page."
)

// ErrorPage renders a minimal standalone HTML page.
func ErrorPage(title, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>`+templ.EscapeString(title)+`</title>
    <style>
      body { font-family: system-ui, sans-serif; display: grid; place-items: center; min-height: 100vh; margin: 0; background: #fdf6f9; color: #3b2f35; }
      main { max-width: 32rem; padding: 2rem; text-align: center; }
      a { color: #b0457a; }
    </style>
  </head>
  <body>
    <main>
      <h1>`+templ.EscapeString(title)+`</h1>
      <p>`+templ.EscapeString(message)+`</p>
      <p><a href="/">Back to the game</a></p>
    </main>
  </body>
</html>
`)
		return err
	})
}

// FrontendMissingPage is served when the SPA build output is absent.
func FrontendMissingPage() templ.Component {
	return ErrorPage("Twin Reveal", msgFrontendMissing)
}

// InternalErrorPage is the error-boundary fallback for page requests.
func InternalErrorPage() templ.Component {
	return ErrorPage("Twin Reveal", msgSomethingWrong)
}
