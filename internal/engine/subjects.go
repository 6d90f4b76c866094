package engine

// BasicSubjects is the built-in subject catalog used when no game master
// supplies one.
var BasicSubjects = []string{
	// Animals
	"cat", "bat", "bear", "bee", "butterfly", "cobra", "dog", "dolphin",
	"fish", "fox", "frog", "elephant", "giraffe", "kangaroo", "lion",
	"lizard", "owl", "panda", "penguin", "rabbit", "snail", "snake",
	"spider", "squirrel", "turtle", "tiger", "viper", "zebra",

	// Foods
	"apple", "banana", "burger", "cake", "candy", "carrot", "cookie",
	"cupcake", "donut", "pineapple", "pizza", "popcorn", "sandwich",
	"sushi", "taco",

	// Vehicles
	"air balloon", "airplane", "bicycle", "blimp", "car", "boat", "bus",
	"helicopter", "school bus", "ship", "ski lift", "submarine", "subway",
	"train",

	// Nature
	"cloud", "flower", "hurricane", "mountain", "palm tree", "river",
	"snowflake", "tornado", "tree", "waterfall", "volcano",

	// Buildings / infrastructure
	"big ben", "brick wall", "bridge", "castle", "eiffel tower", "house",
	"leaning tower", "lighthouse", "pyramid", "skyscraper",

	// Space
	"alien", "earth", "galaxy", "moon", "planet", "rocket", "saturn",
	"star", "sun",

	// Objects
	"balloon", "book", "camera", "clock", "chair", "computer", "crayon",
	"guitar", "hat", "key", "lamp", "letter", "paintbrush", "pencil",
	"phone", "scissors", "sword", "television", "toothbrush", "umbrella",

	// Fantasy
	"centaur", "cyclops", "dragon", "fairy", "ghost", "gnome",
	"hippogryph", "mermaid", "unicorn", "vampire", "wizard",
}

// RandomSubject picks a subject at random, preferring ones not already
// drawn in this room. Once the catalog is exhausted it falls back to the
// full list.
func RandomSubject(previousArt []PreviousArt) string {
	used := make(map[string]bool, len(previousArt))
	for _, art := range previousArt {
		used[art.Subject] = true
	}

	unused := make([]string, 0, len(BasicSubjects))
	for _, subject := range BasicSubjects {
		if !used[subject] {
			unused = append(unused, subject)
		}
	}
	if len(unused) == 0 {
		unused = BasicSubjects
	}
	return unused[randIndex(len(unused))]
}
