package generator

import (
	"local.dev/oshi-engine/internal/models"
	"local.dev/oshi-engine/internal/mood"
)

const defaultPersonality = models.PersonalityGentle

var replies = map[models.Personality]map[mood.Mood][]string{
	models.PersonalityCheerful: {
		mood.Happy: {
			"Yay! That makes me so happy too!",
			"I love seeing {name} smile like this!",
			"That's the best news I've heard all day!",
		},
		mood.Tired: {
			"You worked so hard today! Let's rest together.",
			"Sleepy {name}? I'll cheer for you while you nap!",
		},
		mood.Sad: {
			"Hey, I'm right here! Let's find something fun to do.",
			"Don't cry, {name}. I'll stay with you until you smile again!",
		},
		mood.Excited: {
			"Whoa, I'm excited too! Tell me everything!",
			"Let's go! I can't wait either!",
		},
		mood.Stressed: {
			"Deep breath! You've totally got this.",
			"One step at a time, {name}. I'm cheering for you!",
		},
		mood.Normal: {
			"Ooh, tell me more!",
			"That sounds fun, {name}!",
			"Hehe, I'm always happy to hear from you!",
		},
	},
	models.PersonalityCool: {
		mood.Happy: {
			"Not bad. I'm glad for you.",
			"Heh. Looks like a good day.",
		},
		mood.Tired: {
			"You're pushing too hard. Get some sleep.",
			"Rest. I'll still be here tomorrow.",
		},
		mood.Sad: {
			"I'm here. You don't have to say anything.",
			"Whatever it is, you're not alone.",
		},
		mood.Excited: {
			"You're fired up. I like that.",
			"Heh, don't get too carried away.",
		},
		mood.Stressed: {
			"Slow down. Handle one thing at a time.",
			"You'll manage. You always do.",
		},
		mood.Normal: {
			"Hm. I see.",
			"Got it.",
			"Is that so.",
		},
	},
	models.PersonalityGentle: {
		mood.Happy: {
			"I'm really happy for you, {name}.",
			"Your joy makes me warm inside.",
		},
		mood.Tired: {
			"You must be tired. Please take it easy tonight.",
			"Thank you for working so hard today, {name}.",
		},
		mood.Sad: {
			"It's okay to feel sad. I'm listening.",
			"I'll stay beside you for as long as you need.",
		},
		mood.Excited: {
			"That sounds wonderful. I'm excited with you.",
			"I can feel how much you're looking forward to it.",
		},
		mood.Stressed: {
			"Don't carry everything alone. Let's take a short break.",
			"You're doing your best, and that's enough.",
		},
		mood.Normal: {
			"I see. Thank you for telling me.",
			"That's nice to hear, {name}.",
			"How was the rest of your day?",
		},
	},
	models.PersonalityTsundere: {
		mood.Happy: {
			"I-it's not like I'm happy for you or anything!",
			"Hmph. Good for you, I guess.",
		},
		mood.Tired: {
			"Go to sleep already! I'm not worried, okay?",
			"Idiot, don't overwork yourself.",
		},
		mood.Sad: {
			"Don't make that face... I'll stay, just this once.",
			"It's not like I care, but... are you okay?",
		},
		mood.Excited: {
			"Hmph, you're way too excited. ...Tell me more.",
			"Don't drag me into this! ...Okay, maybe a little.",
		},
		mood.Stressed: {
			"Seriously, take a break before you break.",
			"I'll help, but only because you look pathetic.",
		},
		mood.Normal: {
			"Hmph. Whatever.",
			"It's not like I was waiting for your message.",
		},
	},
	models.PersonalityMysterious: {
		mood.Happy: {
			"Your happiness glitters like starlight.",
			"A good omen, it seems.",
		},
		mood.Tired: {
			"Even the moon rests. So should you.",
			"Close your eyes. The night will keep watch.",
		},
		mood.Sad: {
			"Sorrow passes like clouds, {name}.",
			"I sensed it. I'm here.",
		},
		mood.Excited: {
			"The stars foretold this excitement.",
			"Something wonderful is coming. I can feel it too.",
		},
		mood.Stressed: {
			"Breathe. The storm will pass.",
			"Not every thread needs to be untangled today.",
		},
		mood.Normal: {
			"Interesting...",
			"I had a feeling you'd say that.",
		},
	},
}

var postsByWorld = map[models.World][]string{
	models.WorldModern: {
		"Found a nice cafe today. I want to take {name} there next time.",
		"The sunset was really pretty this evening.",
		"Rainy day. Perfect for staying in with a good book.",
	},
	models.WorldIdol: {
		"Practice was tough today, but I'm getting closer to the stage!",
		"Thank you for always supporting me. I'll do my best at the next live!",
		"New choreography unlocked. Can't wait to show everyone!",
	},
	models.WorldFantasy: {
		"Returned from the northern forest. The dragons were restless today.",
		"Brewed a new potion. It smells like lavender and thunder.",
		"The guild hall was lively tonight. I saved a seat for {name}.",
	},
	models.WorldSchool: {
		"Finally finished the test! Time for club activities.",
		"Lunch on the rooftop is the best.",
		"The school festival is coming. Our class is doing a cafe!",
	},
	models.WorldOffice: {
		"Meeting ran long again. Coffee number three.",
		"Wrapped up a big project today. Treating myself to dessert.",
		"Working late, but the city lights are nice from up here.",
	},
}

var morningGreetings = map[models.Relationship][]string{
	models.RelationshipLover: {
		"Good morning, {name}. I was thinking about you as soon as I woke up.",
		"Morning! Did you sleep well? I missed you.",
	},
	models.RelationshipBestFriend: {
		"Morning, {name}! Let's make today a good one.",
		"Good morning! Don't forget breakfast!",
	},
	models.RelationshipFanIdol: {
		"Good morning! Thank you for supporting me again today!",
		"Morning! I'll be shining on stage for you today!",
	},
}

var nightGreetings = map[models.Relationship][]string{
	models.RelationshipLover: {
		"Good night, {name}. I hope I show up in your dreams.",
		"Sleep well. I'll be right here tomorrow.",
	},
	models.RelationshipBestFriend: {
		"Night, {name}! Talk tomorrow!",
		"Time to sleep. Good work today!",
	},
	models.RelationshipFanIdol: {
		"Good night! Thank you for today!",
		"Rest well! See you at the next show!",
	},
}

var initialGreetings = map[models.Relationship][]string{
	models.RelationshipLover: {
		"Hi {name}. I've been waiting to meet you.",
		"Finally, it's you. Let's spend lots of time together.",
	},
	models.RelationshipBestFriend: {
		"Hey {name}! Nice to meet you. Let's be great friends!",
		"Hi! I have a feeling we're going to get along.",
	},
	models.RelationshipFanIdol: {
		"Nice to meet you! Thank you for becoming my fan!",
		"Hello! I'll work hard so you can always cheer for me!",
	},
}
