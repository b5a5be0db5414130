package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/creastudio/store"
	"github.com/hrygo/creastudio/store/db/sqlite"
)

// journalDSN is the configured journal, falling back to the default file in
// the data directory.
func journalDSN() string {
	if instanceProfile.JournalEnabled() {
		return instanceProfile.JournalDSN
	}
	return filepath.Join(instanceProfile.Data, "journal_"+instanceProfile.Mode+".db")
}

func openStore(ctx context.Context) (*store.Store, error) {
	p := *instanceProfile
	p.JournalDSN = journalDSN()
	driver, err := sqlite.NewDB(&p)
	if err != nil {
		return nil, err
	}
	s := store.New(driver, &p)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, errors.Wrap(err, "failed to migrate journal")
	}
	return s, nil
}

func newHistoryCmd() *cobra.Command {
	var limit int
	var remove bool
	cmd := &cobra.Command{
		Use:   "history [UID]",
		Short: "List recorded chat transcripts, or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				list, err := s.ListTranscripts(cmd.Context(), &store.FindTranscript{Limit: &limit})
				if err != nil {
					return err
				}
				rows := [][]string{{"UID", "UPDATED", "TURNS", "TITLE"}}
				for _, t := range list {
					rows = append(rows, []string{
						t.UID,
						time.Unix(t.UpdatedTs, 0).Format(time.DateTime),
						strconv.Itoa(int(t.TurnCount)),
						truncate(t.Title, 50),
					})
				}
				return table(out, rows)
			}

			uid := args[0]
			if remove {
				if err := s.DeleteTranscript(cmd.Context(), uid); err != nil {
					return err
				}
				fmt.Fprintf(out, "Transcript %s deleted\n", uid)
				return nil
			}

			t, err := s.GetTranscript(cmd.Context(), uid)
			if err != nil {
				return err
			}
			if t == nil {
				return errors.Errorf("transcript %s not found", uid)
			}
			turns, err := s.ListTranscriptTurns(cmd.Context(), &store.FindTranscriptTurn{TranscriptUID: uid})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n\n", t.Title)
			for _, turn := range turns {
				fmt.Fprintf(out, "[%s] %s:\n%s\n\n", time.Unix(turn.CreatedTs, 0).Format(time.TimeOnly), turn.Role, turn.Content)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "transcripts to list")
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the given transcript")
	return cmd
}
