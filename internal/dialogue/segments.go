// Package dialogue assembles persona, conversation history and a partial
// reply into model-ready encoder/decoder token sequences.
package dialogue

import "github.com/samcharles93/parley/internal/tokenizer"

// Instance is a single model input: encoder ids with aligned token type ids,
// decoder ids for the partial reply, and the language tag id conditioning
// the decoder.
type Instance struct {
	InputIDs        []int
	TokenTypeIDs    []int
	DecoderInputIDs []int
	LangID          int
}

// BuildInstance builds an Instance from three segments.
//
// The persona sentences are concatenated, each prefixed with the persona
// token, and typed as persona throughout. History turns follow, the first
// prefixed with speaker1, alternating thereafter; every position in a turn
// is typed with that turn's speaker token. The decoder input is
// bos + reply, with eos appended when withEOS is set.
//
// The returned token type ids are aligned 1:1 with the input ids.
func BuildInstance(persona, history [][]int, reply []int, sp *tokenizer.Specials, langID int, withEOS bool) Instance {
	size := 0
	for _, sent := range persona {
		size += len(sent) + 1
	}
	for _, turn := range history {
		size += len(turn) + 1
	}

	inputIDs := make([]int, 0, size)
	typeIDs := make([]int, 0, size)

	for _, sent := range persona {
		inputIDs = append(inputIDs, sp.Persona)
		inputIDs = append(inputIDs, sent...)
	}
	for range inputIDs {
		typeIDs = append(typeIDs, sp.Persona)
	}

	for i, turn := range history {
		speaker := sp.Speaker1
		if i%2 == 1 {
			speaker = sp.Speaker2
		}
		inputIDs = append(inputIDs, speaker)
		inputIDs = append(inputIDs, turn...)
		for j := 0; j < len(turn)+1; j++ {
			typeIDs = append(typeIDs, speaker)
		}
	}

	decoder := make([]int, 0, len(reply)+2)
	decoder = append(decoder, sp.BOS)
	decoder = append(decoder, reply...)
	if withEOS {
		decoder = append(decoder, sp.EOS)
	}

	return Instance{
		InputIDs:        inputIDs,
		TokenTypeIDs:    typeIDs,
		DecoderInputIDs: decoder,
		LangID:          langID,
	}
}
