package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"pathwise/internal/growth"
	"pathwise/internal/logging"
	"pathwise/internal/synthesis"
	"pathwise/internal/types"
)

var (
	profilePath string
	withExtras  bool
	ownerID     string
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Run the artifact synthesis pipeline for a profile",
	Long: `Validates the profile, requests the assessment, then the roadmap, action plan,
learning resources, mentor matches and vision in parallel. On success the
profile and assessment are saved and the bundle is printed as JSON.`,
	Args: cobra.NoArgs,
	RunE: runSynthesize,
}

var reflectCmd = &cobra.Command{
	Use:   "reflect [transcript]",
	Short: "Record a voice reflection and refresh growth indices",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReflect,
}

var auditCmd = &cobra.Command{
	Use:   "audit [task...]",
	Short: "Run the monthly skill audit over a list of tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAudit,
}

var growthCmd = &cobra.Command{
	Use:   "growth",
	Short: "Show the growth snapshot, engagement pulse and audit history",
	Args:  cobra.NoArgs,
	RunE:  runGrowth,
}

// commandContext returns a context bounded by --timeout and cancelled on
// SIGINT/SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	return ctx, func() {
		stop()
		cancel()
	}
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	profile, err := loadProfile(profilePath)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, offline)
	if err != nil {
		return err
	}
	defer a.Close(metricsFile)

	sess := synthesis.NewSession(profile.OwnerID, cfg.Synthesis.RoleScope)
	sess, err = a.orchestrator.Synthesize(ctx, sess, profile)
	if err != nil {
		if sess.Kind() == types.KindAuthExpired {
			return fmt.Errorf("generation credential rejected, check the API key: %w", err)
		}
		return err
	}

	out := struct {
		Bundle  *types.Bundle        `json:"bundle"`
		Alerts  []types.Notification `json:"alerts,omitempty"`
		Signals []types.MarketSignal `json:"marketSignals,omitempty"`
		Tip     *types.StrategicTip  `json:"strategicTip,omitempty"`
	}{Bundle: sess.Bundle}

	if withExtras {
		b := sess.Bundle
		out.Alerts = a.alerts.Synthesize(ctx, b.Profile, b.Assessment)
		out.Signals = a.insights.MarketSignals(ctx, b.Profile)
		if tip := a.insights.StrategicTip(ctx, b.Profile, b.Assessment); tip.Title != "" {
			out.Tip = &tip
		}
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

// storedProfile loads the owner's saved profile.
func storedProfile(ctx context.Context, a *app, owner string) (types.Profile, error) {
	rec, ok, err := a.orchestrator.Load(ctx, owner, cfg.Synthesis.RoleScope)
	if err != nil {
		return types.Profile{}, err
	}
	if !ok {
		return types.Profile{}, fmt.Errorf("no profile stored for %q, run synthesize first", owner)
	}
	return rec.Profile, nil
}

func runReflect(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx, cfg, offline)
	if err != nil {
		return err
	}
	defer a.Close(metricsFile)

	profile, err := storedProfile(ctx, a, ownerID)
	if err != nil {
		return err
	}
	rec, profile, err := a.reflections.Capture(ctx, profile, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"reflection": rec,
		"pulse":      profile.Pulse,
		"growth":     profile.Growth,
	})
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx, cfg, offline)
	if err != nil {
		return err
	}
	defer a.Close(metricsFile)

	profile, err := storedProfile(ctx, a, ownerID)
	if err != nil {
		return err
	}
	rec, err := a.audits.Run(ctx, profile, args)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), rec)
}

func runGrowth(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx, cfg, offline)
	if err != nil {
		return err
	}
	defer a.Close(metricsFile)

	profile, err := storedProfile(ctx, a, ownerID)
	if err != nil {
		return err
	}
	history, err := a.reflections.History(ctx, ownerID)
	if err != nil {
		return err
	}
	audits, err := a.audits.History(ctx, ownerID)
	if err != nil {
		return err
	}

	conductor := make([]map[string]interface{}, 0, len(audits))
	for _, rec := range audits {
		conductor = append(conductor, map[string]interface{}{"month": rec.Month, "score": rec.ConductorScore})
	}
	logging.Get(logging.CategoryGrowth).Debug("Growth view for %s: %d reflections, %d audits", ownerID, len(history), len(audits))
	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"reflections": len(history),
		"growth":      growth.GrowthSnapshot(history),
		"pulse":       profile.Pulse,
		"conductor":   conductor,
	})
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
