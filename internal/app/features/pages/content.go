package pages

// About is the about page.
var About = Page{
	Slug:     "about",
	Headline: "About EcoRecycle",
	Intro:    "We're on a mission to create a sustainable future by making e-waste recycling accessible, convenient, and impactful for everyone.",
	Sections: []Section{
		{
			Heading: "How We Started",
			Paragraphs: []string{
				"Founded in 2015, EcoRecycle began with a simple observation: electronic waste was becoming one of the fastest-growing waste streams, yet recycling options were limited and inconvenient.",
				"Our founders, a group of environmental engineers and tech enthusiasts, set out to create a solution that would make e-waste recycling accessible to everyone. They built EcoRecycle with a vision of combining technology and sustainability to address the growing e-waste crisis.",
				"Today, we've grown into a nationwide service with a network of certified recycling facilities, but our mission remains the same: to protect our planet by ensuring electronic waste is recycled responsibly.",
			},
		},
	},
	Values: []Section{
		{Heading: "Environmental Stewardship", Paragraphs: []string{"We're committed to protecting our planet through responsible recycling practices and minimizing waste."}},
		{Heading: "Community Focus", Paragraphs: []string{"We believe in building strong relationships with the communities we serve and making a positive local impact."}},
		{Heading: "Excellence", Paragraphs: []string{"We strive for excellence in all aspects of our service, from customer experience to recycling processes."}},
		{Heading: "Innovation", Paragraphs: []string{"We continuously seek innovative solutions to improve our services and maximize environmental impact."}},
		{Heading: "Transparency", Paragraphs: []string{"We believe in being open about our processes and the impact of our recycling efforts."}},
		{Heading: "Passion", Paragraphs: []string{"We're passionate about creating a sustainable future and inspiring others to join our mission."}},
	},
	Team: []Person{
		{Name: "Sarah Johnson", Role: "Founder & CEO", Bio: "Environmental engineer with 15+ years of experience in waste management."},
		{Name: "Michael Chen", Role: "Chief Technology Officer", Bio: "Tech innovator focused on creating digital solutions for environmental challenges."},
		{Name: "David Rodriguez", Role: "Sustainability Manager", Bio: "Environmental scientist specializing in circular economy principles."},
	},
}

// Terms is the terms of service page.
var Terms = Page{
	Slug:     "terms",
	Headline: "Terms of Service",
	Intro:    "These terms apply when you schedule a pickup, make a donation or contact us through this site.",
	Sections: []Section{
		{
			Heading: "Pickups",
			Paragraphs: []string{
				"Pickups are scheduled for the date and time slot you choose. We do not collect on Sundays or public holidays.",
				"Please remove personal items and make the devices accessible at the address you provide. We may reschedule if the items cannot be reached.",
			},
		},
		{
			Heading: "Donations",
			Paragraphs: []string{
				"Donations are voluntary and support our recycling programs. Keep your receipt id for any questions about a donation.",
			},
		},
		{
			Heading: "Accounts",
			Paragraphs: []string{
				"You are responsible for keeping your password private. We may suspend sign-in after repeated failed attempts.",
			},
		},
	},
}

// Privacy is the privacy policy page.
var Privacy = Page{
	Slug:     "privacy",
	Headline: "Privacy Policy",
	Intro:    "We collect only what we need to collect your e-waste and answer your messages.",
	Sections: []Section{
		{
			Heading: "What we collect",
			Paragraphs: []string{
				"Your name, email, phone number and pickup address, the items you list, and the date and time slot you choose.",
				"A pickup in progress is kept so you can continue where you left off. Unfinished pickups are deleted after a few days.",
			},
		},
		{
			Heading: "How we use it",
			Paragraphs: []string{
				"We use your details to schedule and carry out the pickup and to send you a confirmation. Contact and donation messages are delivered to our team by email.",
			},
		},
		{
			Heading: "Data on your devices",
			Paragraphs: []string{
				"We ensure complete data destruction for all devices we collect.",
			},
		},
	},
}
