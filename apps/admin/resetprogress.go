package main

import "context"

// resetProgress restarts the user's journey at the start position; cohort and
// identity are preserved.
func (cli *commandLine) resetProgress(uname string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	_, err = cli.progSvc.Reset(ctx, usr.ID)
	return err
}
