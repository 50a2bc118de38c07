package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yardline/yardline/internal/model"
)

// Animal form fields.
const (
	afTag = iota
	afSpecies
	afBreed
	afSex
	afWeight
	afSupplier
)

// AnimalFormPage creates and edits animals.
type AnimalFormPage struct {
	formPage
	backend model.Backend
	editing *model.Animal
}

func newAnimalFormPage(d deps) *AnimalFormPage {
	return &AnimalFormPage{
		backend: d.backend,
		formPage: formPage{
			id:      PageAnimalForm,
			title:   "Animal",
			keys:    d.keys,
			timeout: d.fetchTimeout,
			form: newForm(d.keys,
				fieldSpec{label: "Tag number", placeholder: "UK123456", limit: 32},
				fieldSpec{label: "Species", placeholder: "cattle"},
				fieldSpec{label: "Breed", placeholder: "Angus"},
				fieldSpec{label: "Sex", placeholder: strings.Join(model.Sexes, "/")},
				fieldSpec{label: "Live weight kg", placeholder: "550.0", limit: 10},
				fieldSpec{label: "Supplier ID", placeholder: "1", limit: 10},
			),
		},
	}
}

func (p *AnimalFormPage) Enter(params interface{}) tea.Cmd {
	fp, _ := params.(formParams)
	p.editing = nil
	if fp.ReturnTo == "" {
		fp.ReturnTo = PageAnimals
	}
	if fp.ID == 0 {
		return p.begin(fp.ReturnTo, "New animal")
	}

	cmd := p.begin(fp.ReturnTo, fmt.Sprintf("Edit animal #%d", fp.ID))
	p.loading = true
	b, id, seq, timeout := p.backend, fp.ID, p.seq, p.timeout
	return tea.Batch(cmd, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a, err := b.GetAnimal(ctx, id)
		return formLoadedMsg[model.Animal]{page: PageAnimalForm, seq: seq, value: a, err: err}
	})
}

func (p *AnimalFormPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	if m, ok := msg.(formLoadedMsg[model.Animal]); ok {
		if m.seq != p.seq {
			return nil, nil
		}
		p.loading = false
		if m.err != nil {
			return errorToast(m.err), p.back(false)
		}
		a := m.value
		p.editing = &a
		p.form.set(afTag, a.TagNumber)
		p.form.set(afSpecies, a.Species)
		p.form.set(afBreed, a.Breed)
		p.form.set(afSex, a.Sex)
		p.form.set(afWeight, a.LiveWeightKg.String())
		p.form.set(afSupplier, strconv.FormatInt(a.SupplierID, 10))
		return nil, nil
	}

	cmd, nav, submit := p.handle(msg)
	if !submit {
		return cmd, nav
	}
	return p.submit(), nil
}

// animal builds the record from the fields.
func (p *AnimalFormPage) animal() (model.Animal, error) {
	var a model.Animal
	if p.editing != nil {
		a = *p.editing
	}
	f := p.form
	a.TagNumber = f.value(afTag)
	a.Species = strings.ToLower(f.value(afSpecies))
	a.Breed = f.value(afBreed)
	a.Sex = strings.ToLower(f.value(afSex))

	w, err := parsePositiveDecimal("live weight", f.value(afWeight))
	if err != nil {
		return a, err
	}
	a.LiveWeightKg = w

	sid, err := strconv.ParseInt(f.value(afSupplier), 10, 64)
	if err != nil || sid <= 0 {
		return a, fmt.Errorf("%w: supplier ID must be a positive number", model.ErrInvalid)
	}
	a.SupplierID = sid
	return a, a.Validate()
}

func (p *AnimalFormPage) submit() tea.Cmd {
	a, err := p.animal()
	if err != nil {
		p.err = validationText(err)
		return nil
	}
	b := p.backend
	if p.editing != nil {
		return p.run(func(ctx context.Context) error {
			_, err := b.UpdateAnimal(ctx, a)
			return err
		}, "Saved "+a.TagNumber)
	}
	return p.run(func(ctx context.Context) error {
		_, err := b.CreateAnimal(ctx, a)
		return err
	}, "Added "+a.TagNumber)
}

// Supplier form fields.
const (
	sfName = iota
	sfRegion
	sfPhone
)

// SupplierFormPage creates and edits suppliers.
type SupplierFormPage struct {
	formPage
	backend model.Backend
	editing *model.Supplier
}

func newSupplierFormPage(d deps) *SupplierFormPage {
	return &SupplierFormPage{
		backend: d.backend,
		formPage: formPage{
			id:      PageSupplierForm,
			title:   "Supplier",
			keys:    d.keys,
			timeout: d.fetchTimeout,
			form: newForm(d.keys,
				fieldSpec{label: "Name", placeholder: "Hill Farm"},
				fieldSpec{label: "Region", placeholder: "North Yorkshire"},
				fieldSpec{label: "Phone", placeholder: "01765 600100", limit: 24},
			),
		},
	}
}

func (p *SupplierFormPage) Enter(params interface{}) tea.Cmd {
	fp, _ := params.(formParams)
	p.editing = nil
	if fp.ReturnTo == "" {
		fp.ReturnTo = PageSuppliers
	}
	if fp.ID == 0 {
		return p.begin(fp.ReturnTo, "New supplier")
	}

	cmd := p.begin(fp.ReturnTo, fmt.Sprintf("Edit supplier #%d", fp.ID))
	p.loading = true
	b, id, seq, timeout := p.backend, fp.ID, p.seq, p.timeout
	return tea.Batch(cmd, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s, err := b.GetSupplier(ctx, id)
		return formLoadedMsg[model.Supplier]{page: PageSupplierForm, seq: seq, value: s, err: err}
	})
}

func (p *SupplierFormPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	if m, ok := msg.(formLoadedMsg[model.Supplier]); ok {
		if m.seq != p.seq {
			return nil, nil
		}
		p.loading = false
		if m.err != nil {
			return errorToast(m.err), p.back(false)
		}
		s := m.value
		p.editing = &s
		p.form.set(sfName, s.Name)
		p.form.set(sfRegion, s.Region)
		p.form.set(sfPhone, s.Phone)
		return nil, nil
	}

	cmd, nav, submit := p.handle(msg)
	if !submit {
		return cmd, nav
	}

	s := model.Supplier{Active: true}
	if p.editing != nil {
		s = *p.editing
	}
	s.Name = p.form.value(sfName)
	s.Region = p.form.value(sfRegion)
	s.Phone = p.form.value(sfPhone)
	if err := s.Validate(); err != nil {
		p.err = validationText(err)
		return nil, nil
	}

	b := p.backend
	if p.editing != nil {
		return p.run(func(ctx context.Context) error {
			_, err := b.UpdateSupplier(ctx, s)
			return err
		}, "Saved "+s.Name), nil
	}
	return p.run(func(ctx context.Context) error {
		_, err := b.CreateSupplier(ctx, s)
		return err
	}, "Added "+s.Name), nil
}

// slaughterParams opens the kill-floor form for one animal.
type slaughterParams struct {
	Animal   model.Animal
	ReturnTo string
}

// Slaughter form fields.
const (
	kfHotWeight = iota
	kfGrade
	kfNote
)

// SlaughterFormPage records the slaughter of an animal.
type SlaughterFormPage struct {
	formPage
	backend model.Backend
	animal  model.Animal
}

func newSlaughterFormPage(d deps) *SlaughterFormPage {
	return &SlaughterFormPage{
		backend: d.backend,
		formPage: formPage{
			id:      PageSlaughterForm,
			title:   "Slaughter",
			keys:    d.keys,
			timeout: d.fetchTimeout,
			form: newForm(d.keys,
				fieldSpec{label: "Hot weight kg", placeholder: "320.0", limit: 10},
				fieldSpec{label: "Grade", placeholder: strings.Join(model.Grades, "/"), limit: 1},
				fieldSpec{label: "Inspection note", placeholder: "optional", limit: 200},
			),
		},
	}
}

func (p *SlaughterFormPage) Enter(params interface{}) tea.Cmd {
	sp, _ := params.(slaughterParams)
	if sp.ReturnTo == "" {
		sp.ReturnTo = PageAnimals
	}
	p.animal = sp.Animal
	return p.begin(sp.ReturnTo, fmt.Sprintf("Slaughter %s (%s, %s kg live)",
		sp.Animal.TagNumber, sp.Animal.Species, sp.Animal.LiveWeightKg.StringFixed(1)))
}

func (p *SlaughterFormPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	cmd, nav, submit := p.handle(msg)
	if !submit {
		return cmd, nav
	}

	in := model.SlaughterInput{
		AnimalID:       p.animal.ID,
		Grade:          strings.ToUpper(p.form.value(kfGrade)),
		InspectionNote: p.form.value(kfNote),
	}
	w, err := parsePositiveDecimal("hot weight", p.form.value(kfHotWeight))
	if err == nil {
		in.HotWeightKg = w
		err = in.Validate()
	}
	if err != nil {
		p.err = validationText(err)
		return nil, nil
	}

	b, tag := p.backend, p.animal.TagNumber
	return p.run(func(ctx context.Context) error {
		_, err := b.SlaughterAnimal(ctx, in)
		return err
	}, "Slaughtered "+tag), nil
}

// validationText strips the sentinel prefix from local validation errors.
func validationText(err error) string {
	if errors.Is(err, model.ErrInvalid) {
		return strings.TrimPrefix(err.Error(), model.ErrInvalid.Error()+": ")
	}
	return err.Error()
}
