package tui

import "github.com/Hazem-GitHub/Luftborn-Task-Manager/internal/domain"

type CardFieldConfig struct {
	ShowPriority bool
	ShowDueDate  bool
	ShowTags     bool
	ShowAssignee bool
}

type Option func(*Model)

func DefaultCardFieldConfig() CardFieldConfig {
	return CardFieldConfig{
		ShowPriority: true,
		ShowDueDate:  true,
		ShowTags:     true,
		ShowAssignee: true,
	}
}

func WithCardFieldConfig(cfg CardFieldConfig) Option {
	return func(m *Model) {
		m.cardFields = cfg
	}
}

// WithConfirmDelete toggles the confirmation modal in front of task deletion.
func WithConfirmDelete(confirm bool) Option {
	return func(m *Model) {
		m.confirmDelete = confirm
	}
}

// WithColumnTitles overrides the board column headings per status.
// Missing or empty entries keep the built-in titles.
func WithColumnTitles(titles map[domain.Status]string) Option {
	return func(m *Model) {
		m.columnTitles = make(map[domain.Status]string, len(titles))
		for status, title := range titles {
			m.columnTitles[status] = title
		}
	}
}
