package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/schedule"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	out    io.Writer
	openDB func() (*sqlx.DB, error) // only the migrate command needs the database
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) on the database")
	_, _ = fmt.Fprintln(cli.out, "  lectures [-file CSV] - check a lecture catalog and print it")
	_, _ = fmt.Fprintln(cli.out, "  enddate -start YYYY-MM-DD -software \"A, B\" [-schedule JSON] [-file CSV] - print the expected end date")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	lecturesCmd := flag.NewFlagSet("lectures", flag.ContinueOnError)
	lecturesCmd.SetOutput(cli.out)
	lecturesFile := lecturesCmd.String("file", "", "A \"name,lectures\" CSV file. The built-in catalog when empty.")

	endDateCmd := flag.NewFlagSet("enddate", flag.ContinueOnError)
	endDateCmd.SetOutput(cli.out)
	endDateStart := endDateCmd.String("start", "", "The batch start date (YYYY-MM-DD).")
	endDateSoftware := endDateCmd.String("software", "", "Comma separated softwares included.")
	endDateSchedule := endDateCmd.String("schedule", "", `The weekly schedule, e.g. {"Mon":{"startTime":"10:00","endTime":"12:00"}}.`)
	endDateFile := endDateCmd.String("file", "", "A \"name,lectures\" CSV file. The built-in catalog when empty.")

	switch args[1] {
	case "migrate":
		return cli.migrate(args[2:])
	case "lectures":
		if err := lecturesCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.lectures(*lecturesFile)
	case "enddate":
		if err := endDateCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *endDateStart == "" || *endDateSoftware == "" {
			endDateCmd.Usage()
			return errHelp
		}
		return cli.endDate(*endDateStart, *endDateSoftware, *endDateSchedule, *endDateFile)
	default:
		cli.printUsage()
		return errHelp
	}
}

func loadCatalog(file string) (*schedule.Catalog, error) {
	if file == "" {
		return schedule.DefaultCatalog(), nil
	}
	return schedule.LoadCatalogFile(file)
}

// lectures prints the catalog with its lecture counts.
func (cli *commandLine) lectures(file string) error {
	catalog, err := loadCatalog(file)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	var total int
	for _, e := range catalog.Entries() {
		total += e.Lectures
		_, _ = fmt.Fprintf(w, "%s\t%d\n", e.Name, e.Lectures)
	}
	_, _ = fmt.Fprintf(w, "%d softwares\t%d lectures\n", len(catalog.Entries()), total)
	return w.Flush()
}

// endDate prints the expected end date in display form, "N/A" when it cannot be told.
func (cli *commandLine) endDate(start, software, rawSchedule, file string) error {
	catalog, err := loadCatalog(file)
	if err != nil {
		return err
	}
	startDate, err := core.ParseDate(start)
	if err != nil {
		return err
	}

	var sched schedule.WeeklySchedule
	if rawSchedule != "" {
		if err = json.Unmarshal([]byte(rawSchedule), &sched); err != nil {
			return err
		}
		if flds := sched.Validate(); len(flds) > 0 {
			return core.NewValidationError(nil, flds...)
		}
		for _, wd := range sched.Days() {
			slot, _ := sched.Slot(wd)
			_, _ = fmt.Fprintf(cli.out, "%s %s-%s\n", wd, slot.StartTime, slot.EndTime)
		}
	}

	for _, s := range catalog.Unrecognized(software) {
		if s.Suggestion != "" {
			_, _ = fmt.Fprintf(cli.out, "unrecognized software %q (did you mean %q?)\n", s.Name, s.Suggestion)
		} else {
			_, _ = fmt.Fprintf(cli.out, "unrecognized software %q\n", s.Name)
		}
	}

	date, err := schedule.ExpectedEndDate(startDate, software, sched, catalog)
	if err != nil {
		return err
	}
	display := "N/A"
	if !date.IsZero() {
		display = date.Display()
	}
	_, _ = fmt.Fprintf(cli.out, "%d lectures, expected end date: %s\n", catalog.TotalLectures(software), display)
	return nil
}
