package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"campus-gms/catalog"
	"campus-gms/dispatch"
	"campus-gms/duplicates"
	"campus-gms/forms"
	"campus-gms/qrscan"
)

type reportOptions struct {
	optionType string
	domain     string
	fields     []string
	ratings    []string
	qr         string
	attach     []string
	anonymous  bool
	pick       int
}

func reportCmd(app *App) *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report <category>",
		Short: "File a complaint, suggestion or feedback",
		Long: `File a report in one category (see gmsctl categories).

Location fields can be typed with --set or read from a room QR code with
--qr. When open issues already exist at the same place they are listed
and the report is held until you choose one with --pick: a number marks
your report as a duplicate of that issue, 0 files it anyway.`,
		Example: `  gmsctl report classroom --type complaint --domain Furniture \
    --qr 'block=B&floor=3&room=305' --set comments='broken bench' --pick 0
  gmsctl report restroom --type feedback --set block=A --set floor=1 --rate cleanliness=4 ...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, app, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.optionType, "type", "t", "", "Complaint, Suggestion or Feedback")
	f.StringVarP(&opts.domain, "domain", "d", "", "complaint domain, e.g. Furniture")
	f.StringArrayVar(&opts.fields, "set", nil, "form field as name=value (repeatable)")
	f.StringArrayVar(&opts.ratings, "rate", nil, "feedback rating as name=score (repeatable)")
	f.StringVar(&opts.qr, "qr", "", "room QR payload to prefill block, floor and room")
	f.StringArrayVar(&opts.attach, "attach", nil, "photo to upload and attach (repeatable)")
	f.BoolVar(&opts.anonymous, "anonymous", false, "hide your name from staff")
	f.IntVar(&opts.pick, "pick", -1, "choice from the similar issues list, 0 for none of the above")
	return cmd
}

func runReport(cmd *cobra.Command, app *App, key string, opts *reportOptions) error {
	ctx := cmd.Context()
	if _, err := app.signedIn(ctx); err != nil {
		return err
	}

	cat, err := app.Client.Categories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	def, err := cat.Get(key)
	if err != nil {
		if byTag, ok := cat.ByActionItem(key); ok {
			def = byTag
		} else {
			return fmt.Errorf("%w, try one of %s", err, strings.Join(cat.Keys(), ", "))
		}
	}

	actions, err := opts.actions(def)
	if err != nil {
		return err
	}
	for _, path := range opts.attach {
		url, err := app.upload(cmd, path)
		if err != nil {
			return err
		}
		actions = append(actions, forms.AddAttachment{URL: url})
	}

	con := console{out: app.Out}
	d := dispatch.New(dispatch.Deps{
		Form:      forms.New(def),
		Submitter: app.Client,
		Identity:  app.Session,
		Notifier:  con,
		Navigator: con,
		Logger:    app.Logger,
	})
	st := d.Apply(actions...)

	tracker := duplicates.NewTracker(duplicates.NewLookup(app.Client))
	defer tracker.Close()
	if tracker.Observe(ctx, def, st) {
		tracker.Wait()
		if res, ok := tracker.Latest(); ok {
			if res.Err != nil {
				app.Logger.Warn("⚠️ Similar issue check failed", zap.Error(res.Err))
				app.printf("Could not check for similar issues, filing anyway\n")
			} else if res.HasMatches() {
				choice, err := app.choose(res.Candidates, opts.pick)
				if err != nil {
					return err
				}
				if err := d.SelectDuplicate(choice); errors.Is(err, dispatch.ErrDuplicateSelected) {
					return nil
				}
			}
		}
	}

	_, err = d.Submit(ctx)
	return err
}

// choose prints the similar issues and resolves --pick against them.
func (a *App) choose(cands []duplicates.Candidate, pick int) (duplicates.Candidate, error) {
	a.printf("Similar open issues at this location:\n")
	for i, c := range cands {
		if c.IsSentinel() {
			a.printf("  0) %s\n", c.Label)
			continue
		}
		a.printf("  %d) %s\n", i+1, c.Label)
	}
	sentinel := cands[len(cands)-1]
	switch {
	case pick < 0:
		return duplicates.Candidate{}, errors.New("similar issues exist, rerun with --pick N (0 for none of the above)")
	case pick == 0:
		return sentinel, nil
	case pick < len(cands):
		return cands[pick-1], nil
	default:
		return duplicates.Candidate{}, fmt.Errorf("--pick %d is out of range 0-%d", pick, len(cands)-1)
	}
}

func (a *App) upload(cmd *cobra.Command, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()
	att, err := a.Client.UploadAttachment(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	a.printf("📸 Uploaded %s\n", filepath.Base(path))
	return att.URL, nil
}

// actions turns the flags into form edits, in the order a student would
// fill the form: type, domain, location, remaining fields, ratings.
func (o *reportOptions) actions(def *catalog.Category) ([]forms.Action, error) {
	var out []forms.Action
	if o.optionType != "" {
		ot, ok := catalog.ParseOptionType(o.optionType)
		if !ok {
			return nil, fmt.Errorf("unknown --type %q, use Complaint, Suggestion or Feedback", o.optionType)
		}
		out = append(out, forms.SetOptionType{Type: ot})
	}
	if o.domain != "" {
		out = append(out, forms.SetDomain{Domain: o.domain})
	}
	if o.qr != "" {
		loc, err := qrscan.Parse(o.qr)
		if err != nil {
			return nil, err
		}
		out = append(out, loc.Action())
	}

	values, err := parsePairs(o.fields)
	if err != nil {
		return nil, fmt.Errorf("--set: %w", err)
	}
	for name := range values {
		if !def.HasField(name) {
			return nil, fmt.Errorf("--set: %s has no field %q", def.Key, name)
		}
	}
	if len(values) > 0 {
		out = append(out, forms.SetFormData{Values: values})
	}

	scores, err := parsePairs(o.ratings)
	if err != nil {
		return nil, fmt.Errorf("--rate: %w", err)
	}
	for name, raw := range scores {
		field := catalog.RatingField(name)
		if !def.HasRating(field) {
			return nil, fmt.Errorf("--rate: %s has no rating %q", def.Key, name)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("--rate %s: %q is not a number", name, raw)
		}
		out = append(out, forms.SetRating{Field: field, Value: n})
	}

	if o.anonymous {
		out = append(out, forms.SetAnonymous{Anonymous: true})
	}
	return out, nil
}

// parsePairs splits name=value arguments. Later names win.
func parsePairs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", arg)
		}
		out[name] = value
	}
	return out, nil
}
