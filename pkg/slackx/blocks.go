package slackx

import "github.com/slack-go/slack"

// SectionBlock wraps one mrkdwn chunk as a Block Kit section. Chunk text
// must already respect the 3000 character section limit.
func SectionBlock(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, text, false, true),
		nil, nil,
	)
}

// SectionBlocks maps each chunk to its own section block.
func SectionBlocks(chunks []string) []slack.Block {
	blocks := make([]slack.Block, 0, len(chunks))
	for _, c := range chunks {
		blocks = append(blocks, SectionBlock(c))
	}
	return blocks
}

func DividerBlock() *slack.DividerBlock {
	return slack.NewDividerBlock()
}

// ContextBlock renders small supplementary text, e.g. bookmark counts.
func ContextBlock(text string) *slack.ContextBlock {
	return slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
	)
}
