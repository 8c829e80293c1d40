package forms

import (
	"time"

	"campus-gms/catalog"
)

// Form applies actions to the state of one category's form.
type Form struct {
	def *catalog.Category
	now func() time.Time
}

// Option configures a Form.
type Option func(*Form)

// WithClock overrides the clock used for bookkeeping timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *Form) { f.now = now }
}

// New returns the form engine for def.
func New(def *catalog.Category, opts ...Option) *Form {
	f := &Form{def: def, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Definition returns the category the form is built from.
func (f *Form) Definition() *catalog.Category {
	return f.def
}

// Initial returns an empty state for the category.
func (f *Form) Initial() State {
	st := State{
		Category: f.def.Key,
		Fields:   make(map[string]string),
		Ratings:  make(map[catalog.RatingField]int),
	}
	if len(f.def.Options) == 1 {
		st.OptionType = f.def.Options[0]
	}
	if f.def.Bookkeeping {
		now := f.now()
		st.Status = StatusDraft
		st.CreatedAt = now
		st.UpdatedAt = now
	}
	return st
}

// Reduce returns the state after applying a. The input state is never
// modified; actions the category does not accept return it unchanged.
func (f *Form) Reduce(st State, a Action) State {
	next := st.clone()

	switch act := a.(type) {
	case SetField:
		if !f.def.HasField(act.Name) {
			return st
		}
		next.Fields[act.Name] = act.Value

	case SetFormData:
		for name, value := range act.Values {
			if f.def.HasField(name) {
				next.Fields[name] = value
			}
		}

	case SetOptionType:
		if !f.def.AllowsOption(act.Type) {
			return st
		}
		next.OptionType = act.Type
		// Domain and ratings never coexist.
		if act.Type == catalog.OptionFeedback {
			next.Domain = ""
		} else {
			next.Ratings = make(map[catalog.RatingField]int)
		}

	case SetDomain:
		if next.OptionType == catalog.OptionFeedback || !f.def.HasDomain(act.Domain) {
			return st
		}
		next.Domain = act.Domain

	case SetRating:
		if next.OptionType != catalog.OptionFeedback || !f.def.HasRating(act.Field) {
			return st
		}
		if act.Value < 1 || act.Value > f.def.RatingScale {
			return st
		}
		next.Ratings[act.Field] = act.Value

	case AddAttachment:
		if act.URL == "" {
			return st
		}
		for _, u := range next.Attachments {
			if u == act.URL {
				return st
			}
		}
		next.Attachments = append(next.Attachments, act.URL)

	case RemoveAttachment:
		kept := next.Attachments[:0]
		for _, u := range next.Attachments {
			if u != act.URL {
				kept = append(kept, u)
			}
		}
		next.Attachments = kept

	case SetAnonymous:
		if !f.def.AllowAnonymous {
			return st
		}
		next.Anonymous = act.Anonymous

	case Reset:
		return f.Initial()

	default:
		return st
	}

	if next.equal(st) {
		return st
	}
	if f.def.Bookkeeping {
		next.UpdatedAt = f.now()
	}
	return next
}

// ReduceAll folds a sequence of actions over st.
func (f *Form) ReduceAll(st State, actions ...Action) State {
	for _, a := range actions {
		st = f.Reduce(st, a)
	}
	return st
}
