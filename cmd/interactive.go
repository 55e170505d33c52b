package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Beastly713/ssss/internal/config"
	"github.com/Beastly713/ssss/internal/logging"
	"github.com/Beastly713/ssss/pkg/ssss"
)

// Styles
var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
)

type model struct {
	scheme    *ssss.Scheme
	threshold int
	textInput textinput.Model
	shares    []string
	seen      map[int]bool
	warnings  *bytes.Buffer
	secret    string
	status    string
	err       error
	done      bool
	quitting  bool
}

func newModel(threshold int, opts ...ssss.Option) (model, error) {
	warnings := &bytes.Buffer{}
	opts = append(opts, ssss.WithLogger(logging.New(warnings, logging.Config{Level: "warn"})))

	scheme, err := ssss.New(threshold, 0, opts...)
	if err != nil {
		return model{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "token-1-0123abcd..."
	ti.Prompt = "share> "
	ti.PromptStyle = focusedStyle
	ti.CharLimit = ssss.MaxTokenLen + 300
	ti.Width = 80
	ti.Focus()

	return model{
		scheme:    scheme,
		threshold: threshold,
		textInput: ti,
		seen:      make(map[int]bool),
		warnings:  warnings,
		status:    "Enter: add share | ctrl+r: combine | ctrl+u: start over | esc: quit",
	}, nil
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			if m.done {
				return m, tea.Quit
			}
			m = m.addShare(m.textInput.Value())
			if m.threshold > 0 && len(m.shares) >= m.threshold {
				m = m.combine()
			}
			return m, nil

		case tea.KeyCtrlU:
			if !m.done {
				m.shares = nil
				m.seen = make(map[int]bool)
				m.err = nil
			}
			return m, nil

		case tea.KeyCtrlR:
			if !m.done {
				m = m.combine()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m model) addShare(raw string) model {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return m
	}

	share, err := ssss.ParseShare(raw)
	if err != nil {
		m.err = err
		return m
	}
	if m.seen[share.Index] {
		m.err = fmt.Errorf("share %d was already entered", share.Index)
		return m
	}

	m.seen[share.Index] = true
	m.shares = append(m.shares, raw)
	m.err = nil
	m.textInput.Reset()
	return m
}

func (m model) combine() model {
	m.warnings.Reset()
	secret, err := m.scheme.Combine(m.shares)
	if err != nil {
		m.err = err
		return m
	}

	m.secret = secret
	m.err = nil
	m.done = true
	m.textInput.Blur()
	m.status = "Enter or esc: quit"
	return m
}

func (m model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	var sb strings.Builder
	if m.threshold > 0 {
		fmt.Fprintf(&sb, "Shares: %d of %d\n\n", len(m.shares), m.threshold)
	} else {
		fmt.Fprintf(&sb, "Shares: %d (combine with ctrl+r)\n\n", len(m.shares))
	}

	for _, s := range m.shares {
		sb.WriteString(checkedStyle.Render("[x] "+s) + "\n")
	}

	if m.done {
		sb.WriteString("\nResulting secret: " + focusedStyle.Render(m.secret) + "\n")
	} else {
		sb.WriteString("\n" + m.textInput.View() + "\n")
	}

	if w := strings.TrimSpace(m.warnings.String()); w != "" {
		sb.WriteString("\n" + warnStyle.Render(w) + "\n")
	}
	if m.err != nil {
		sb.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	sb.WriteString("\n" + m.status + "\n")
	return docStyle.Render(sb.String())
}

var interactiveFlagKeys = map[string]string{
	config.KeyThreshold: "threshold",
	config.KeyHex:       "hex",
}

func newInteractiveCmd(g *globalOptions) *cobra.Command {
	var noDiffusion bool

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Interactive terminal UI for combining shares",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := g.load(cmd, interactiveFlagKeys)
			if err != nil {
				return err
			}

			m, err := newModel(conf.Threshold, ssss.WithHex(conf.Hex), ssss.WithDiffusion(conf.Diffusion))
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(m,
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout())).Run()
			if err != nil {
				return err
			}

			if fm, ok := final.(model); ok && fm.done {
				logger.Debug("secret recovered", "shares", len(fm.shares))
			}
			return nil
		},
	}

	cmd.Flags().IntP("threshold", "t", 0, "Combine automatically once this many shares are entered")
	cmd.Flags().BoolP("hex", "x", false, "Print the secret as a hex number")
	cmd.Flags().BoolVarP(&noDiffusion, "no-diffusion", "D", false, "Disable the diffusion layer")

	return cmd
}

var _ tea.Model = model{}
