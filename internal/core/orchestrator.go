// ABOUTME: Orchestrator drives README generation section by section
// ABOUTME: Cleans model output, validates quality, and runs one repair pass
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/harper/readmegen/internal/config"
	"github.com/harper/readmegen/internal/llm"
	"github.com/harper/readmegen/internal/models"
)

// Strategy selects how the README is produced
type Strategy string

const (
	// StrategySectioned generates each section independently, then polishes
	StrategySectioned Strategy = "sectioned"
	// StrategySingleShot generates the whole README from one combined prompt
	StrategySingleShot Strategy = "single-shot"
)

// ErrNoInput means the store has no chunks and the facts are empty, so there
// is nothing to ground generation on
var ErrNoInput = errors.New("no code chunks and no project facts to generate from")

const minReadmeChars = 800

var (
	placeholderPattern = regexp.MustCompile(`(?i)\[(?:TODO|Add|Insert|Your|PLACEHOLDER)[^\]]*\]`)
	metaLinePattern    = regexp.MustCompile(`(?i)^(?:Here's|Here is|I've|I have)\b.*?:\s*$`)
	fencePrefixes      = []string{"```markdown", "```md", "```"}
)

// Orchestrator runs the generation pipeline against a configured provider
type Orchestrator struct {
	generator llm.Generator
	composer  *Composer
	cfg       *config.Config
	strategy  Strategy

	// DebugDir, when set, receives a JSON state dump per run
	DebugDir string
}

// NewOrchestrator wires the pipeline together
func NewOrchestrator(generator llm.Generator, composer *Composer, cfg *config.Config, strategy Strategy) *Orchestrator {
	if strategy == "" {
		strategy = StrategySectioned
	}
	return &Orchestrator{
		generator: generator,
		composer:  composer,
		cfg:       cfg,
		strategy:  strategy,
	}
}

// runState captures one generation run for debugging
type runState struct {
	RunID     string            `json:"run_id"`
	Style     string            `json:"style"`
	Strategy  Strategy          `json:"strategy"`
	Sections  map[string]string `json:"sections"`
	Issues    []string          `json:"issues,omitempty"`
	Repaired  bool              `json:"repaired"`
	StartedAt time.Time         `json:"started_at"`
}

// GenerateReadme produces a README for the given facts and style. Returns the
// final markdown, any quality issues that survived repair, and an error only
// when there is no input at all or the context is cancelled. Individual
// section failures degrade the output instead of aborting the run.
func (o *Orchestrator) GenerateReadme(ctx context.Context, facts *models.ProjectFacts, style string) (string, []string, error) {
	if o.composer.store.Len() == 0 && (facts == nil || facts.IsEmpty()) {
		return "", nil, ErrNoInput
	}

	state := &runState{
		RunID:     uuid.New().String(),
		Style:     style,
		Strategy:  o.strategy,
		Sections:  make(map[string]string),
		StartedAt: time.Now().UTC(),
	}
	log.Info().Str("run_id", state.RunID).Str("style", style).Str("strategy", string(o.strategy)).Msg("starting readme generation")

	var readme string
	var err error
	switch o.strategy {
	case StrategySingleShot:
		readme, err = o.generateSingleShot(ctx, facts, style)
	default:
		readme, err = o.generateSectioned(ctx, facts, style, state)
	}
	if err != nil {
		return "", nil, err
	}

	readme = CleanOutput(readme)

	issues := ValidateQuality(readme)
	if len(issues) > 0 {
		log.Warn().Strs("issues", issues).Msg("quality issues found, attempting repair")
		if repaired := o.repair(ctx, readme, issues); repaired != "" {
			// Keep the repaired draft only if it actually improved
			repairedIssues := ValidateQuality(repaired)
			if len(repairedIssues) < len(issues) {
				readme = repaired
				issues = repairedIssues
				state.Repaired = true
			}
		}
	}
	state.Issues = issues

	o.dumpState(state)

	log.Info().Str("run_id", state.RunID).Int("chars", len(readme)).Int("issues", len(issues)).Msg("readme generation complete")
	return readme, issues, nil
}

// generateSectioned builds the README one section at a time, then polishes
// the assembled draft into a coherent document
func (o *Orchestrator) generateSectioned(ctx context.Context, facts *models.ProjectFacts, style string, state *runState) (string, error) {
	sectionIDs := o.composer.SectionsForStyle(style, facts)

	var parts []string
	for _, id := range sectionIDs {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		sec, ok := o.composer.plan.Section(id)
		if !ok {
			continue
		}

		prompt := o.composer.ComposePrompt(ctx, sec, facts)
		text, err := o.generate(ctx, prompt, o.cfg.SectionTimeout)
		if err != nil {
			log.Warn().Err(err).Str("section", id).Msg("section generation failed, skipping")
			continue
		}

		text = CleanSection(text)
		if text == "" {
			continue
		}

		state.Sections[id] = text
		parts = append(parts, text)
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("all %d sections failed to generate", len(sectionIDs))
	}

	draft := strings.Join(parts, "\n\n")
	return o.polish(ctx, draft), nil
}

// GenerateSection produces one cleaned README section on its own, outside a
// full pipeline run
func (o *Orchestrator) GenerateSection(ctx context.Context, sec Section, facts *models.ProjectFacts) (string, error) {
	prompt := o.composer.ComposePrompt(ctx, sec, facts)
	text, err := o.generate(ctx, prompt, o.cfg.SectionTimeout)
	if err != nil {
		return "", fmt.Errorf("generating %s section: %w", sec.ID, err)
	}
	return CleanSection(text), nil
}

// generateSingleShot asks for the whole README in one call
func (o *Orchestrator) generateSingleShot(ctx context.Context, facts *models.ProjectFacts, style string) (string, error) {
	var b strings.Builder
	b.WriteString("Generate a complete README.md file for the project described below.\n\n")
	b.WriteString("Include these sections in order:\n")
	for _, id := range o.composer.SectionsForStyle(style, facts) {
		if sec, ok := o.composer.plan.Section(id); ok {
			fmt.Fprintf(&b, "- %s\n", sec.Title)
		}
	}
	b.WriteString("\n")

	overview := Section{
		ID:    "header",
		Title: "Overview",
		Queries: []string{
			"project purpose overview what it does",
			"main entry point application startup initialization",
			"install setup requirements dependencies",
		},
	}
	prompt := o.composer.ComposePrompt(ctx, overview, facts)
	b.WriteString(prompt)

	text, err := o.generate(ctx, b.String(), o.cfg.PolishTimeout)
	if err != nil {
		return "", fmt.Errorf("single-shot generation: %w", err)
	}
	return text, nil
}

// polish asks the model to smooth the assembled draft. On any failure the
// unpolished draft is returned; polish never loses content.
func (o *Orchestrator) polish(ctx context.Context, draft string) string {
	prompt := fmt.Sprintf(`Polish the following README draft. Fix heading levels so there is exactly one top-level heading, remove duplicated content between sections, and smooth transitions. Do not remove sections, commands or technical details. Output only the polished markdown.

%s`, draft)

	polished, err := o.generate(ctx, prompt, o.cfg.PolishTimeout)
	if err != nil {
		log.Warn().Err(err).Msg("polish pass failed, keeping unpolished draft")
		return draft
	}

	polished = CleanOutput(polished)
	// A polish that shrinks the document dramatically ate content
	if len(polished) < len(draft)/2 {
		log.Warn().Int("draft", len(draft)).Int("polished", len(polished)).Msg("polish lost content, keeping draft")
		return draft
	}
	return polished
}

// repair runs the single repair attempt with the validation issues inlined.
// Returns empty string when the repair call itself fails.
func (o *Orchestrator) repair(ctx context.Context, readme string, issues []string) string {
	var b strings.Builder
	b.WriteString("The following README has quality issues:\n")
	for _, issue := range issues {
		fmt.Fprintf(&b, "- %s\n", issue)
	}
	b.WriteString("\nFix every listed issue. Keep all existing content that is correct. Output only the corrected markdown.\n\n")
	b.WriteString(readme)

	repaired, err := o.generate(ctx, b.String(), o.cfg.RepairTimeout)
	if err != nil {
		log.Warn().Err(err).Msg("repair call failed, keeping original draft")
		return ""
	}
	return CleanOutput(repaired)
}

// Refine rewrites an existing README according to user feedback, pulling
// fresh code context relevant to the feedback itself
func (o *Orchestrator) Refine(ctx context.Context, readme, feedback string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Revise the following README according to this feedback:\n\n%s\n\n", feedback)

	refineSec := Section{ID: "refine", Title: "Refinement", Queries: []string{feedback}}
	if codeContext := o.composer.SelectContext(ctx, refineSec, nil); codeContext != "" {
		b.WriteString("RELEVANT CODE CONTEXT:\n")
		b.WriteString(codeContext)
		b.WriteString("\n\n")
	}

	b.WriteString("Keep everything that the feedback does not ask to change. Output only the revised markdown.\n\n")
	b.WriteString(readme)
	prompt := b.String()

	revised, err := o.generate(ctx, prompt, o.cfg.RepairTimeout)
	if err != nil {
		return "", fmt.Errorf("refining readme: %w", err)
	}
	return CleanOutput(revised), nil
}

// generate wraps one provider call with a phase timeout
func (o *Orchestrator) generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := o.generator.Generate(callCtx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("provider returned empty output")
	}
	return text, nil
}

// dumpState writes the run record to DebugDir when debugging is enabled
func (o *Orchestrator) dumpState(state *runState) {
	if o.DebugDir == "" {
		return
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return
	}
	path := fmt.Sprintf("%s/run-%s.json", o.DebugDir, state.RunID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to write debug state")
	}
}

// CleanSection strips code fences and assistant meta-chatter from one
// generated section
func CleanSection(text string) string {
	text = strings.TrimSpace(text)

	for _, prefix := range fencePrefixes {
		if strings.HasPrefix(text, prefix) {
			text = text[len(prefix):]
			break
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	lines := strings.Split(strings.TrimSpace(text), "\n")
	for len(lines) > 0 && metaLinePattern.MatchString(strings.TrimSpace(lines[0])) {
		lines = lines[1:]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// CleanOutput cleans a full README: fence and meta-line stripping plus
// discarding any preamble before the first top-level heading. Subheadings
// do not count; a document with no "#" heading is kept as-is.
func CleanOutput(text string) string {
	text = CleanSection(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "##") {
			if i > 0 {
				text = strings.Join(lines[i:], "\n")
			}
			break
		}
	}

	return strings.TrimSpace(text)
}

// ValidateQuality checks a README draft for the failure modes language models
// actually produce. Returns a human-readable issue list, empty when clean.
func ValidateQuality(readme string) []string {
	var issues []string

	if placeholders := placeholderPattern.FindAllString(readme, -1); len(placeholders) > 0 {
		issues = append(issues, fmt.Sprintf("contains %d placeholder(s) such as %q", len(placeholders), placeholders[0]))
	}
	if len(readme) < minReadmeChars {
		issues = append(issues, fmt.Sprintf("suspiciously short: %d characters", len(readme)))
	}
	if !strings.HasPrefix(strings.TrimSpace(readme), "#") {
		issues = append(issues, "does not start with a markdown heading")
	}

	lower := strings.ToLower(readme)
	if !strings.Contains(lower, "install") {
		issues = append(issues, "missing installation instructions")
	}
	if !strings.Contains(lower, "usage") && !strings.Contains(lower, "getting started") && !strings.Contains(lower, "quick start") {
		issues = append(issues, "missing usage instructions")
	}

	return issues
}
