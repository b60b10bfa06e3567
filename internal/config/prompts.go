package config

const defaultTextPrompt = `From this text extracted from a trading card image:
%s

Generate a JSON object with the following structure:
{"life": 0, "attack": 0, "cost": 0, "counter": 0, "type": "CHARACTER", "name": "Name", "tribe": "Crew/Affiliation", "description": "Card effect text", "trigger": ""}

Do not generate random values, only use text present above. Use null for numbers you cannot read.
Send only the JSON object, without any other characters.`

const defaultVisionPrompt = `You are an expert extracting text from trading card images.
Extract the maximum text possible from this image.
Do not generate random values, just extract the text from the image.
Return a JSON object with the keys: life, attack, cost, counter (numbers or null), type, name, tribe, description, trigger (strings).
Send only the JSON object, without any other characters.`

// DefaultPrompts returns the built-in extraction prompts. Text must contain
// one %s for the OCR text.
func DefaultPrompts() RecognitionPrompts {
	return RecognitionPrompts{
		Text:   defaultTextPrompt,
		Vision: defaultVisionPrompt,
	}
}
