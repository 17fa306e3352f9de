package v1alpha1

// DeepCopy returns a copy of p that shares no slices with it.
func (p Post) DeepCopy() Post {
	out := p
	out.Tags = copyStrings(p.Tags)
	return out
}

// DeepCopy returns a copy of p that shares no slices or pointers with it.
func (p Project) DeepCopy() Project {
	out := p
	out.Gallery = copyStrings(p.Gallery)
	out.Technologies = copyStrings(p.Technologies)
	out.Features = copyStrings(p.Features)
	if p.Testimonial != nil {
		t := *p.Testimonial
		out.Testimonial = &t
	}
	return out
}

// copyStrings keeps nil and empty distinct so JSON output is unchanged.
func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
