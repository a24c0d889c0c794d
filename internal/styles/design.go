package styles

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/splitlease/parity/internal/capture"
	"github.com/splitlease/parity/internal/store"
)

// Files written by DesignSystem.Save
const (
	DesignSystemFile   = "design_system.json"
	FilterControlsFile = "filter_controls.json"
)

// DesignSampleLimit caps how many elements are sampled for the page-wide palette
const DesignSampleLimit = 500

// DesignSystem is the page-wide palette, type scale and spacing of a page
type DesignSystem struct {
	URL        string              `json:"url"`
	Colors     Colors              `json:"colors"`
	Typography Typography          `json:"typography"`
	Spacing    Spacing             `json:"spacing"`
	Borders    BorderScale         `json:"borders"`
	Inputs     []map[string]string `json:"inputs"`
	Labels     []map[string]string `json:"labels"`

	// FilterControls are saved to their own file
	FilterControls []FilterControl `json:"-"`
}

type Colors struct {
	Backgrounds []string            `json:"backgrounds"`
	Text        []string            `json:"text"`
	Borders     []string            `json:"borders"`
	Buttons     []map[string]string `json:"buttons"`
}

type Typography struct {
	FontFamilies []string `json:"fontFamilies"`
	FontSizes    []string `json:"fontSizes"`
	FontWeights  []string `json:"fontWeights"`
}

type Spacing struct {
	Padding []string `json:"padding"`
	Margin  []string `json:"margin"`
	Gaps    []string `json:"gaps"`
}

type BorderScale struct {
	BorderRadius []string `json:"borderRadius"`
	BorderWidth  []string `json:"borderWidth"`
}

// FilterControl is a select and the label element right before it
type FilterControl struct {
	HasLabel     bool              `json:"hasLabel"`
	LabelText    *string           `json:"labelText"`
	LabelStyles  map[string]string `json:"labelStyles"`
	SelectStyles map[string]string `json:"selectStyles"`
}

// designSample is what designJS returns before aggregation
type designSample struct {
	Styles  []map[string]string `json:"styles"`
	Buttons []map[string]string `json:"buttons"`
	Inputs  []map[string]string `json:"inputs"`
	Labels  []map[string]string `json:"labels"`
}

// designRule collects one computed property into a list, skipping its default values
type designRule struct {
	prop string
	skip []string
	list func(*DesignSystem) *[]string
}

var designRules = []designRule{
	{"backgroundColor", []string{"rgba(0, 0, 0, 0)"}, func(d *DesignSystem) *[]string { return &d.Colors.Backgrounds }},
	{"color", nil, func(d *DesignSystem) *[]string { return &d.Colors.Text }},
	{"borderColor", []string{"rgb(0, 0, 0)"}, func(d *DesignSystem) *[]string { return &d.Colors.Borders }},
	{"fontFamily", nil, func(d *DesignSystem) *[]string { return &d.Typography.FontFamilies }},
	{"fontSize", nil, func(d *DesignSystem) *[]string { return &d.Typography.FontSizes }},
	{"fontWeight", nil, func(d *DesignSystem) *[]string { return &d.Typography.FontWeights }},
	{"padding", []string{"0px"}, func(d *DesignSystem) *[]string { return &d.Spacing.Padding }},
	{"margin", []string{"0px"}, func(d *DesignSystem) *[]string { return &d.Spacing.Margin }},
	{"gap", []string{"normal", "0px"}, func(d *DesignSystem) *[]string { return &d.Spacing.Gaps }},
	{"borderRadius", []string{"0px"}, func(d *DesignSystem) *[]string { return &d.Borders.BorderRadius }},
	{"borderWidth", []string{"0px"}, func(d *DesignSystem) *[]string { return &d.Borders.BorderWidth }},
}

// aggregate dedupes sampled styles into d, keeping first-seen order
func (d *DesignSystem) aggregate(samples []map[string]string) {
	seen := make(map[string]map[string]bool, len(designRules))
	for _, rule := range designRules {
		seen[rule.prop] = map[string]bool{}
		*rule.list(d) = []string{}
	}

	for _, sample := range samples {
		for _, rule := range designRules {
			v := sample[rule.prop]
			if v == "" || seen[rule.prop][v] || contains(rule.skip, v) {
				continue
			}
			seen[rule.prop][v] = true
			list := rule.list(d)
			*list = append(*list, v)
		}
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// ExtractDesignSystem navigates the tab in ctx to url, waits settle, and samples the page's computed styles.
// Every browser step is bounded by timeout.
func ExtractDesignSystem(ctx context.Context, url string, timeout, settle time.Duration) (*DesignSystem, error) {
	if err := capture.Navigate(ctx, url, timeout, settle); err != nil {
		return nil, err
	}

	var (
		sample   designSample
		controls []FilterControl
	)
	err := capture.RunWithin(ctx, timeout,
		chromedp.Evaluate(fmt.Sprintf(designJS, DesignSampleLimit), &sample),
		chromedp.Evaluate(filterControlsJS, &controls),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to extract design system from %s: %w", url, err)
	}

	return newDesignSystem(url, sample, controls), nil
}

func newDesignSystem(url string, sample designSample, controls []FilterControl) *DesignSystem {
	d := &DesignSystem{
		URL:            url,
		Inputs:         nonNil(sample.Inputs),
		Labels:         nonNil(sample.Labels),
		FilterControls: controls,
	}
	d.Colors.Buttons = nonNil(sample.Buttons)
	if d.FilterControls == nil {
		d.FilterControls = []FilterControl{}
	}
	d.aggregate(sample.Styles)
	return d
}

func nonNil(v []map[string]string) []map[string]string {
	if v == nil {
		return []map[string]string{}
	}
	return v
}

// Save writes the design system and its filter controls into dir
func (d *DesignSystem) Save(dir string) ([]string, error) {
	designPath, err := store.SaveJSON(dir, DesignSystemFile, d)
	if err != nil {
		return nil, err
	}
	controlsPath, err := store.SaveJSON(dir, FilterControlsFile, d.FilterControls)
	if err != nil {
		return []string{designPath}, err
	}
	return []string{designPath, controlsPath}, nil
}

// Counts summarizes the extracted design system in display order
func (d *DesignSystem) Counts() []DesignCount {
	return []DesignCount{
		{"background colors", len(d.Colors.Backgrounds)},
		{"text colors", len(d.Colors.Text)},
		{"border colors", len(d.Colors.Borders)},
		{"buttons analyzed", len(d.Colors.Buttons)},
		{"font families", len(d.Typography.FontFamilies)},
		{"font sizes", len(d.Typography.FontSizes)},
		{"inputs analyzed", len(d.Inputs)},
		{"labels analyzed", len(d.Labels)},
		{"filter controls", len(d.FilterControls)},
	}
}

type DesignCount struct {
	What string
	N    int
}

// designJS samples raw computed styles of the first %d elements plus every button, input and label
const designJS = `(() => {
	const props = ['backgroundColor', 'color', 'borderColor', 'fontFamily', 'fontSize', 'fontWeight',
		'padding', 'margin', 'gap', 'borderRadius', 'borderWidth'];
	const text = (el, n) => el.textContent.trim().substring(0, n);
	const out = {styles: [], buttons: [], inputs: [], labels: []};

	Array.from(document.querySelectorAll('*')).slice(0, %d).forEach(el => {
		const c = window.getComputedStyle(el);
		const s = {};
		props.forEach(p => { s[p] = c[p] || ''; });
		out.styles.push(s);
	});

	document.querySelectorAll('button').forEach(el => {
		const c = window.getComputedStyle(el);
		out.buttons.push({
			text: text(el, 30),
			backgroundColor: c.backgroundColor, color: c.color, borderColor: c.borderColor,
			borderRadius: c.borderRadius, padding: c.padding, fontSize: c.fontSize, fontWeight: c.fontWeight
		});
	});

	document.querySelectorAll('select, input').forEach(el => {
		const c = window.getComputedStyle(el);
		out.inputs.push({
			type: el.tagName + (el.type ? '[' + el.type + ']' : ''),
			backgroundColor: c.backgroundColor, color: c.color, border: c.border,
			borderRadius: c.borderRadius, padding: c.padding, fontSize: c.fontSize, height: c.height
		});
	});

	document.querySelectorAll('label').forEach(el => {
		const c = window.getComputedStyle(el);
		out.labels.push({
			text: text(el, 50),
			color: c.color, fontSize: c.fontSize, fontWeight: c.fontWeight, fontFamily: c.fontFamily
		});
	});

	return out;
})()`

// filterControlsJS describes every select and its preceding sibling label
const filterControlsJS = `(() => Array.from(document.querySelectorAll('select')).map(select => {
	const c = window.getComputedStyle(select);
	const label = select.previousElementSibling;
	const lc = label ? window.getComputedStyle(label) : null;
	return {
		hasLabel: !!label,
		labelText: label ? label.textContent.trim() : null,
		labelStyles: lc ? {color: lc.color, fontSize: lc.fontSize, fontWeight: lc.fontWeight} : null,
		selectStyles: {
			backgroundColor: c.backgroundColor, color: c.color, border: c.border,
			borderRadius: c.borderRadius, padding: c.padding, fontSize: c.fontSize,
			height: c.height, fontFamily: c.fontFamily
		}
	};
}))()`
