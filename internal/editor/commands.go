package editor

import "github.com/debemdeboas/mdwidget/internal/surface"

// Command binds a key to an editing action. Modifier commands are bound under
// the platform modifier, Cmd- on Mac and Ctrl- elsewhere.
type Command struct {
	Key      string
	Modifier bool
	Run      func(e *Editor)
}

var Commands = []Command{
	{Key: "`", Run: (*Editor).code},
	{Key: "B", Modifier: true, Run: func(e *Editor) { e.Wrap("__") }},
	{Key: "I", Modifier: true, Run: func(e *Editor) { e.Wrap("_") }},
	{Key: "F11", Run: (*Editor).ToggleFullscreen},
	{Key: "P", Modifier: true, Run: (*Editor).TogglePreview},
}

// KeyName returns the keymap name of c on the host platform.
func (e *Editor) KeyName(c Command) string {
	if !c.Modifier {
		return c.Key
	}
	if e.host.Mac {
		return "Cmd-" + c.Key
	}
	return "Ctrl-" + c.Key
}

func (e *Editor) bindCommands() func() {
	km := make(surface.KeyMap, len(Commands))
	for _, c := range Commands {
		run := c.Run
		km[e.KeyName(c)] = func() { run(e) }
	}
	return e.surface.AddKeyMap(km)
}

// code wraps the selection in backticks or inserts a single one.
func (e *Editor) code() {
	if e.surface.Selection() != "" {
		e.Wrap("`")
		return
	}
	e.Replace("`")
}

// Replace replaces the selection, or inserts at the cursor, and keeps focus in
// the editor.
func (e *Editor) Replace(value string) {
	e.surface.Focus()
	e.surface.ReplaceSelection(value)
	e.surface.Refresh()
}

// Wrap surrounds the selection with token. With nothing selected it inserts
// the token twice and leaves the cursor between them.
func (e *Editor) Wrap(token string) {
	e.surface.Focus()

	cursor := e.surface.Cursor()
	raw := e.surface.Selection()
	e.surface.ReplaceSelection(token + raw + token)

	if raw == "" {
		cursor.Ch += surface.RuneLen(token)
		if err := e.surface.SetCursor(cursor); err != nil {
			editorLogger.Debug().Err(err).Int("editor", e.id).Msg("Cursor not moved")
		}
	}
	e.surface.Refresh()
}
