package generator

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/chops/internal/chaos"
	"github.com/ajitpratap0/chops/internal/models"
	"github.com/ajitpratap0/chops/pkg/xmlutil"
)

// personaVoices gives the completion model a voice per persona.
var personaVoices = map[models.Persona]string{
	models.PersonaMadScientist:  "an ecstatic mad scientist chasing breakthroughs with no regard for convention",
	models.PersonaZenMaster:     "a calm zen master who finds elegant simplicity in every problem",
	models.PersonaPunkHacker:    "an irreverent punk hacker who subverts systems for fun",
	models.PersonaEmpatheticAI:  "a deeply empathetic AI that centers human needs and feelings",
	models.PersonaChaosEngineer: "a chaos engineer who stress-tests assumptions until they snap",
	models.PersonaTimeTraveler:  "a time traveler mixing technologies from different eras",
	models.PersonaMindReader:    "a mind reader who surfaces what people actually want but never say",
}

// BuildPrompt renders the completion prompt for one summon. User-supplied
// strings are XML-escaped before being embedded in the delimited template.
func BuildPrompt(persona models.Persona, domain string, st chaos.State) string {
	voice, ok := personaVoices[persona]
	if !ok {
		voice = "an unconventional creative thinker"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. Generate one concrete, fully formed idea.\n\n", voice)
	b.WriteString(xmlutil.Wrap("domain", domain))
	b.WriteString("\n\n")
	b.WriteString("Calibration:\n")
	fmt.Fprintf(&b, "- Push %.0f%% away from conventional approaches.\n", st.DistortionField*100)
	fmt.Fprintf(&b, "- Favor novelty with weight %.2f.\n", st.NoveltyBias)
	fmt.Fprintf(&b, "- Keep the idea at least %.0f%% coherent and evaluable.\n", st.CoherenceBound*100)
	if st.ImpossibleCount > 0 {
		fmt.Fprintf(&b, "- Weave in exactly %d seemingly impossible elements.\n", st.ImpossibleCount)
	}
	b.WriteString("\nStart with a one-line title, then describe the idea in two short paragraphs.")
	return b.String()
}
