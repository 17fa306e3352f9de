package v1alpha1

import (
	"reflect"
	"testing"
)

func TestPostDeepCopy(t *testing.T) {
	orig := Post{Slug: "a", Tags: []string{"x", "y"}}
	cp := orig.DeepCopy()
	if !reflect.DeepEqual(orig, cp) {
		t.Fatalf("copy differs: %+v vs %+v", cp, orig)
	}

	cp.Tags[0] = "changed"
	if orig.Tags[0] != "x" {
		t.Errorf("original tags modified through copy: %v", orig.Tags)
	}
}

func TestProjectDeepCopy(t *testing.T) {
	orig := Project{
		ID:           "p",
		Gallery:      []string{"g"},
		Technologies: []string{"t"},
		Features:     []string{},
		Testimonial:  &Testimonial{Text: "great"},
	}
	cp := orig.DeepCopy()
	if !reflect.DeepEqual(orig, cp) {
		t.Fatalf("copy differs: %+v vs %+v", cp, orig)
	}
	if cp.Features == nil {
		t.Error("empty slice became nil")
	}

	cp.Gallery[0] = "changed"
	cp.Technologies[0] = "changed"
	cp.Testimonial.Text = "changed"
	if orig.Gallery[0] != "g" || orig.Technologies[0] != "t" || orig.Testimonial.Text != "great" {
		t.Errorf("original modified through copy: %+v", orig)
	}

	if (Project{}).DeepCopy().Gallery != nil {
		t.Error("nil gallery should stay nil")
	}
}
