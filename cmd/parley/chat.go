package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/parley/internal/dataset"
	"github.com/samcharles93/parley/internal/dialogue"
)

func chatCmd() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Chat with a persona-conditioned bot on the console",
		Flags: joinFlags(commonModelFlags(), samplingFlags(), loggingFlags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			applyConfig(c, LoadConfig())
			log := buildLogger()

			rt, err := loadRuntime(log, true)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			langTag, err := selectLanguage()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			langID, _ := rt.specials.LangID(langTag)
			cjk := dataset.IsCJK(langTag)

			persona, err := rt.corpus.SamplePersona(rt.rng, langTag)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			flat := make([]int, 0, 64)
			for _, sent := range persona {
				flat = append(flat, sent...)
			}
			log.Info("selected personality",
				"persona", dialogue.RenderReply(rt.tok, rt.specials, flat, cjk))

			history := dialogue.NewHistory(int(maxTurns))

			fmt.Println("Interactive mode. Type /exit to quit.")
			for {
				input, err := readInteractiveLine(">>> ")
				if err == io.EOF {
					break
				}
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: read input: %v", err), 1)
				}
				input = strings.TrimSpace(input)
				if input == "/exit" {
					break
				}
				if input == "" {
					fmt.Println("Prompt should not be empty!")
					continue
				}

				history.Append(rt.tok.Encode(input))
				reply, stats, err := rt.engine.SampleSequence(ctx, persona, history.Turns(), langID)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: generation: %v", err), 1)
				}
				history.Append(reply)

				fmt.Println(dialogue.RenderReply(rt.tok, rt.specials, reply, cjk))
				log.Debug("reply stats",
					"tokens", stats.TokensGenerated,
					"duration", stats.Duration.String(),
					"tps", fmt.Sprintf("%.2f", stats.TPS))
			}
			return nil
		},
	}
}

// selectLanguage resolves --lang, or prompts until the input is one of the
// supported codes.
func selectLanguage() (string, error) {
	codes := dataset.Languages()
	if langCode != "" {
		tag, ok := dataset.Tag(langCode)
		if !ok {
			return "", fmt.Errorf("unsupported language %q (choose one of %s)",
				langCode, strings.Join(codes, ", "))
		}
		return tag, nil
	}

	prompt := fmt.Sprintf("choose one language from : %s\n", strings.Join(codes, ", "))
	for {
		input, err := readInteractiveLine(prompt)
		if err == io.EOF {
			return "", fmt.Errorf("no language selected")
		}
		if err != nil {
			return "", err
		}
		if tag, ok := dataset.Tag(strings.TrimSpace(input)); ok {
			return tag, nil
		}
		fmt.Println("Choose correct language!")
	}
}

func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}
