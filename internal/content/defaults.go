package content

import (
	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
)

var studioAuthor = v1alpha1.Author{
	Name:   "Amara Okafor",
	Role:   "Creative Director",
	Avatar: "/images/team/amara.jpg",
}

// DefaultPosts returns the bundled blog posts used to seed an empty store.
// Each call returns a fresh copy.
func DefaultPosts() []v1alpha1.Post {
	return []v1alpha1.Post{
		{
			Slug:    "why-small-businesses-need-a-fast-website",
			Title:   "Why Small Businesses Need a Fast Website",
			Excerpt: "Page speed is the first impression most customers never tell you about.",
			Content: "## Speed is a feature\n\n" +
				"Visitors decide whether to stay within a few seconds. A slow page loses them before they read a word.\n\n" +
				"## What we measure\n\n" +
				"- Time to first byte\n- Largest contentful paint\n- Layout shift\n\n" +
				"**Small changes add up.** Compressing images and trimming scripts is often enough to halve load time.",
			CoverImage:  "/images/blog/fast-website.jpg",
			Author:      studioAuthor,
			PublishedAt: "2024-03-12",
			Tags:        []string{"performance", "web design"},
			Featured:    true,
			ReadingTime: "4 min read",
		},
		{
			Slug:    "choosing-a-brand-colour-palette",
			Title:   "Choosing a Brand Colour Palette",
			Excerpt: "A practical walk through how we pick colours that survive print, screens and time.",
			Content: "## Start with meaning\n\n" +
				"Every palette begins with what the brand needs to say.\n\n" +
				"## Test in context\n\n" +
				"- Business cards\n- Mobile screens\n- Signage in daylight\n\n" +
				"A colour that only works on a designer's monitor is not a brand colour.",
			CoverImage: "/images/blog/colour-palette.jpg",
			Author: v1alpha1.Author{
				Name:   "Daniel Mensah",
				Role:   "Brand Designer",
				Avatar: "/images/team/daniel.jpg",
			},
			PublishedAt: "2024-02-20",
			Tags:        []string{"branding", "design"},
			ReadingTime: "5 min read",
		},
		{
			Slug:    "seo-basics-for-local-services",
			Title:   "SEO Basics for Local Services",
			Excerpt: "Three things every local service business should fix before paying for ads.",
			Content: "## Claim your listing\n\n" +
				"Search engines trust businesses that are consistent across the web.\n\n" +
				"## Write for people\n\n" +
				"- Name the area you serve\n- Answer the questions customers actually ask\n- Keep contact details on every page\n\n" +
				"**Good content outlasts any ranking trick.**",
			CoverImage:  "/images/blog/local-seo.jpg",
			Author:      studioAuthor,
			PublishedAt: "2024-01-08",
			Tags:        []string{"seo", "marketing"},
			ReadingTime: "3 min read",
		},
	}
}

// DefaultLegacyProjects returns the bundled portfolio in its original shape.
func DefaultLegacyProjects() []v1alpha1.LegacyProject {
	return []v1alpha1.LegacyProject{
		{
			Slug:      "smilehub-dental",
			Title:     "SmileHub Dental",
			Client:    "SmileHub Dental Clinic",
			Category:  "Healthcare",
			Summary:   "A patient-first website with online booking for a family dental practice.",
			Body:      "SmileHub needed a site that felt calm and made booking an appointment effortless. We designed a warm visual identity and built an online booking flow that cut phone enquiries in half.",
			Thumbnail: "/images/projects/smilehub/cover.jpg",
			Images: []string{
				"/images/projects/smilehub/home.jpg",
				"/images/projects/smilehub/booking.jpg",
				"/images/projects/smilehub/team.jpg",
			},
			Stack:      []string{"Next.js", "Tailwind CSS", "Calendly"},
			Highlights: []string{"Online appointment booking", "Treatment price guide", "Accessible, mobile-first layout"},
			URL:        "https://smilehubdental.example.com",
			Quote: &v1alpha1.LegacyQuote{
				Text:     "Our patients book online now instead of calling. The new site paid for itself in a month.",
				Name:     "Dr. Lerato Nkosi",
				Position: "Practice Owner",
			},
			Year:     "2023",
			Featured: true,
		},
		{
			Slug:      "fort-knox-quantity-surveying",
			Title:     "Fort Knox Quantity Surveying",
			Client:    "Fort Knox QS",
			Category:  "Construction",
			Summary:   "A credible corporate presence for a quantity surveying firm bidding on large tenders.",
			Body:      "Fort Knox QS competes for public tenders where trust is everything. We rebuilt their brand and site around case studies, certifications and a clear service breakdown.",
			Thumbnail: "/images/projects/fort-knox/cover.jpg",
			Images: []string{
				"/images/projects/fort-knox/home.jpg",
				"/images/projects/fort-knox/services.jpg",
			},
			Stack:      []string{"WordPress", "Elementor", "Figma"},
			Highlights: []string{"Tender-ready capability statement", "Project case study library", "Brand refresh"},
			URL:        "https://fortknoxqs.example.com",
			Quote: &v1alpha1.LegacyQuote{
				Text:     "We finally have a website we are proud to send to clients.",
				Name:     "Sipho Dlamini",
				Position: "Managing Director",
				Company:  "Fort Knox Quantity Surveying",
			},
			Year:     "2023",
			Featured: true,
		},
		{
			Slug:      "wildscapia-environmental-news",
			Title:     "Wildscapia Environmental News",
			Client:    "Wildscapia Media",
			Category:  "Media",
			Summary:   "A fast, readable news platform covering conservation and climate stories.",
			Body:      "Wildscapia publishes daily environmental reporting. We built a content platform with category navigation, newsletter sign-up and image-heavy layouts that still load quickly on mobile networks.",
			Thumbnail: "/images/projects/wildscapia/cover.jpg",
			Images: []string{
				"/images/projects/wildscapia/home.jpg",
				"/images/projects/wildscapia/article.jpg",
				"/images/projects/wildscapia/newsletter.jpg",
			},
			Stack:      []string{"React", "Headless CMS", "Netlify"},
			Highlights: []string{"Category-driven navigation", "Newsletter integration", "Optimised image delivery"},
			URL:        "https://wildscapia.example.com",
			Year:       "2024",
			Featured:   true,
		},
	}
}

// DefaultProjects returns the bundled portfolio converted to Project.
func DefaultProjects() []v1alpha1.Project {
	return ConvertLegacyProjects(DefaultLegacyProjects())
}
