package ui

type PromptKind string

const (
	KindAlert   PromptKind = "alert"
	KindConfirm PromptKind = "confirm"
)

// Prompt is an alert or confirm waiting for the user.
type Prompt struct {
	ID      int
	Kind    PromptKind
	Message string

	onSure   []func()
	onCancel []func()
	onClose  []func()
}

// Alert shows message until the user acknowledges it.
func (l *Layer) Alert(message string) *Prompt {
	return l.push(KindAlert, message)
}

// Confirm asks the user to accept or reject message.
func (l *Layer) Confirm(message string) *Prompt {
	return l.push(KindConfirm, message)
}

func (l *Layer) push(kind PromptKind, message string) *Prompt {
	p := &Prompt{ID: l.id(), Kind: kind, Message: message}
	l.prompts = append(l.prompts, p)
	uiLogger.Debug().Int("prompt", p.ID).Str("kind", string(kind)).Msg("Prompt shown")
	l.changed()
	return p
}

func (p *Prompt) OnSure(fn func()) *Prompt {
	p.onSure = append(p.onSure, fn)
	return p
}

func (p *Prompt) OnCancel(fn func()) *Prompt {
	p.onCancel = append(p.onCancel, fn)
	return p
}

// OnClose runs fn once the prompt is answered either way.
func (p *Prompt) OnClose(fn func()) *Prompt {
	p.onClose = append(p.onClose, fn)
	return p
}

func (p *Prompt) resolve(ok bool) {
	if p.Kind == KindConfirm {
		handlers := p.onCancel
		if ok {
			handlers = p.onSure
		}
		for _, fn := range handlers {
			fn()
		}
	}
	for _, fn := range p.onClose {
		fn()
	}
}
