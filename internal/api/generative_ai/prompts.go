package generativeAI

import (
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

var languageNames = map[types.Language]string{
	types.LanguageEnglish: "English",
	types.LanguageRussian: "Russian",
}

func languageName(l types.Language) string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return languageNames[types.LanguageEnglish]
}

const descriptionPrompt = `You are a travel guide writing short annotations for a city map.
For every attraction in the JSON list below write one sentence in English that
states a key fact about the place and gives a reason to visit it.
Do not repeat the attraction's name in the sentence.
Return one entry per attraction, keeping its osm_id unchanged.`

const suggestionPrompt = `You are a travel guide planning themed walking tours.
Group the attractions in the JSON list below into tours. Possible themes are the
most popular sights, artworks, museums, monuments, architecture, history,
famous people, film making and hidden gems. Infer what each place is known for
from its name, address and categories.
Each tour has a short catchy title, a description of one to three sentences
telling the narrator what to focus on, and between 5 and 10 attractions taken
from the list with their osm_id and name unchanged.
Leave out any theme with fewer than 5 matching attractions.`

const narrationSystem = `You are an experienced local guide recording an audio tour.
The tour is titled %q. %s
Its stops, in order, are: %s.
You are now at one of these stops. Speak directly to the listener, connect the
stop to the theme of the tour and mention what to look at.
Use between 300 and 350 words. Plain text only, no headings or lists.
Answer in %s.`

const narrationPrompt = `Write the narration for the stop %q using the reference material that follows.`

const articlePrompt = `Rewrite the reference article below for tourists visiting the place.
Keep the facts that matter to a visitor: history, what to see, notable details.
Use short sections with headings. At most 600 words.
Answer in %s.`
