package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/schematiq/schematiq/internal/plan"
	"github.com/schematiq/schematiq/internal/seed"
	"github.com/schematiq/schematiq/internal/util"
)

var (
	planOwner string
	planMode  string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create and inspect plans without the HTTP API",
	Long: `Create and inspect plans directly against the configured store.

With the default in-memory store plans vanish when the command exits; set
store.driver=sqlite to keep them.`,
}

var planCreateCmd = &cobra.Command{
	Use:   "create <goal>",
	Short: "Generate a plan for a goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := plan.ParseMode(planMode)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := newBackend(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		p, err := b.engine.CreatePlan(cmd.Context(), planOwner, strings.Join(args, " "), mode, nil)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if isJSON() {
			return printJSON(out, p)
		}
		renderPlan(out, p, styled(out))
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		plans, err := st.ListByOwner(cmd.Context(), planOwner)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if isJSON() {
			return printJSON(out, plans)
		}
		renderPlanList(out, plans, styled(out))
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show <plan-id-or-prefix>",
	Short: "Show one plan with its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		plans, err := st.ListByOwner(cmd.Context(), planOwner)
		if err != nil {
			return err
		}
		p, err := findPlan(plans, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if isJSON() {
			return printJSON(out, p)
		}
		renderPlan(out, p, styled(out))
		return nil
	},
}

func init() {
	planCmd.PersistentFlags().StringVarP(&planOwner, "owner", "o", seed.DefaultOwner, "owning user id")
	planCreateCmd.Flags().StringVarP(&planMode, "mode", "m", string(plan.ModeEveryday), "plan mode: free or paid")

	planCmd.AddCommand(planCreateCmd, planListCmd, planShowCmd)
	rootCmd.AddCommand(planCmd)
}

type planStyles struct {
	header, id, dim, title, done, pending, warn lipgloss.Style
}

func newPlanStyles(color bool) planStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return planStyles{plain, plain, plain, plain, plain, plain, plain}
	}
	return planStyles{
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true),
		id:      lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		title:   lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
		done:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		pending: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	}
}

func renderPlanList(out io.Writer, plans []*plan.Plan, color bool) {
	st := newPlanStyles(color)
	if len(plans) == 0 {
		fmt.Fprintln(out, st.dim.Render("No plans yet."))
		return
	}

	fmt.Fprintf(out, "%-10s %-12s %-6s %-6s %s\n",
		st.header.Render("ID"), st.header.Render("CREATED"), st.header.Render("MODE"),
		st.header.Render("DONE"), st.header.Render("TITLE"))
	for _, p := range plans {
		title := p.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(out, "%-10s %-12s %-6s %-6s %s\n",
			st.id.Render(util.ShortID(p.ID, 0)),
			st.dim.Render(p.CreatedAt.Format("2006-01-02")),
			string(p.Mode),
			fmt.Sprintf("%d/%d", completed(p), len(p.Steps)),
			title)
	}
	fmt.Fprintf(out, "\n%s\n", st.dim.Render(fmt.Sprintf("Total: %d plan(s)", len(plans))))
}

func renderPlan(out io.Writer, p *plan.Plan, color bool) {
	st := newPlanStyles(color)

	fmt.Fprintf(out, "%s %s\n", st.title.Render(p.Title), st.dim.Render("("+p.ID+")"))
	meta := []string{"mode " + string(p.Mode)}
	if p.EstimatedDuration != nil {
		meta = append(meta, *p.EstimatedDuration)
	}
	if p.BudgetLevel != nil {
		meta = append(meta, "budget "+*p.BudgetLevel)
	}
	if len(p.Tags) > 0 {
		meta = append(meta, strings.Join(p.Tags, ", "))
	}
	fmt.Fprintln(out, st.dim.Render(strings.Join(meta, " · ")))

	total := len(p.Steps)
	done := completed(p)
	const barWidth = 30
	filled := barWidth * done / max(total, 1)
	fmt.Fprintf(out, "\nProgress: [%s%s] %d/%d\n\n",
		strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled), done, total)

	for i, s := range p.Steps {
		marker := st.pending.Render("[ ]")
		title := s.Title
		if s.IsComplete {
			marker = st.done.Render("[✓]")
			title = st.dim.Render(title)
		}
		if s.IsMilestone {
			title += " ★"
		}
		est := s.TimeEstimate
		fmt.Fprintf(out, "%2d. %s %s %s\n", i+1, marker, title,
			st.dim.Render(fmt.Sprintf("%g-%g %s, %s effort", est.Min, est.Max, est.Unit, s.Effort)))
		for _, sub := range s.Subtasks {
			fmt.Fprintf(out, "       - %s\n", sub)
		}
		for _, tool := range s.PowerTools {
			fmt.Fprintf(out, "       %s %s (%s)\n", st.id.Render("tool:"), tool.Name, tool.Cost)
		}
		if s.PotentialPitfall != "" {
			fmt.Fprintf(out, "       %s %s\n", st.warn.Render("pitfall:"), s.PotentialPitfall)
		}
	}
}

// findPlan resolves a full id or unique prefix among plans.
func findPlan(plans []*plan.Plan, idOrPrefix string) (*plan.Plan, error) {
	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	id, err := util.ResolvePrefix(idOrPrefix, ids)
	if err != nil {
		return nil, err
	}
	return plans[slices.Index(ids, id)], nil
}

func completed(p *plan.Plan) int {
	n := 0
	for _, s := range p.Steps {
		if s.IsComplete {
			n++
		}
	}
	return n
}
