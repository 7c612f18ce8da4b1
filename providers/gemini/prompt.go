package gemini

import "fmt"

const promptTemplate = `You are an interior design AI. Please analyze this empty room image and add furniture based on the following description: "%s". 

Make the furniture additions look realistic and well-integrated into the space. Consider:
- Room lighting and shadows
- Perspective and scale
- Color harmony with existing elements
- Realistic furniture placement
- Style consistency

Please generate a new image with the furniture added to this room.`

// ComposePrompt wraps the user's furniture description in the fixed
// interior-design guidance sent with every image
func ComposePrompt(description string) string {
	return fmt.Sprintf(promptTemplate, description)
}
