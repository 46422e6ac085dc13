package main

import (
	"fmt"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/spf13/cobra"
)

func startCmd(g *globals) *cobra.Command {
	var (
		business bool
		follow   bool
		debate   domain.DebateRequest
		ideas    domain.BusinessRequest
	)

	cmd := &cobra.Command{
		Use:   "start <topic>",
		Short: "Start a debate or business idea session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			transport := g.transport()

			var (
				id  string
				err error
			)
			if business {
				ideas.Topic = args[0]
				ideas.JudgeLLM = debate.JudgeLLM
				id, err = transport.CreateBusiness(ctx, ideas)
			} else {
				debate.Topic = args[0]
				id, err = transport.CreateDebate(ctx, debate)
			}
			if err != nil {
				return fmt.Errorf("start session: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), successMsg("session %s started", accentStyle.Render(id)))
			if !follow {
				return nil
			}
			return watchSession(cmd, g, id)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&business, "business", false, "Generate business ideas instead of a debate")
	f.BoolVarP(&follow, "follow", "f", false, "Watch the session until it finishes")

	f.StringVar(&debate.ProLLM, "pro", "", "Provider arguing for the topic")
	f.StringVar(&debate.ConLLM, "con", "", "Provider arguing against the topic")
	f.IntVar(&debate.Rounds, "rounds", 0, "Number of debate rounds")
	f.StringVar(&debate.RoleA, "role-a", "", "Label of the pro side")
	f.StringVar(&debate.RoleB, "role-b", "", "Label of the con side")

	f.StringVar(&ideas.GeneratorLLM, "generator", "", "Provider generating ideas")
	f.StringVar(&ideas.CriticLLM, "critic", "", "Provider critiquing ideas")
	f.StringVar(&ideas.RefinerLLM, "refiner", "", "Provider refining ideas")
	f.IntVar(&ideas.NumIdeas, "ideas", 0, "Number of ideas to generate")

	f.StringVar(&debate.JudgeLLM, "judge", "", "Provider judging the session")

	return cmd
}
