package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/offcampus/rollcall/internal/client/models"
)

const dateLayout = "2006-01-02"

// Sessions prints the known session schedule.
func (a *App) Sessions(ctx context.Context) error {
	sessions, err := a.attendance.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions known yet.")
		return nil
	}

	for _, s := range sessions {
		fence := "no fence"
		if s.Fence != nil {
			fence = fmt.Sprintf("fence %.0fm", s.Fence.RadiusM)
		}
		fmt.Printf("%s  %s  %s  %s - %s  (%s)\n",
			s.ID, s.CourseCode, s.Title,
			s.StartTime.Local().Format("15:04"),
			s.EndTime.Local().Format("15:04"),
			fence)
	}
	return nil
}

// CheckIn walks the user through one check-in attempt. The outcome is
// printed either way; Rejected attempts are stored too.
func (a *App) CheckIn(ctx context.Context) error {
	sessionID, err := getSimpleText(a.reader, "Enter session id", os.Stdout)
	if err != nil {
		return err
	}

	token, err := getSimpleText(a.reader, "Scan QR token (leave empty to use class code)", os.Stdout)
	if err != nil {
		return err
	}

	secret := ""
	if token == "" {
		secret, err = getSimpleText(a.reader, "Enter class code", os.Stdout)
		if err != nil {
			return err
		}
	}

	locText, err := getSimpleText(a.reader, "Enter location as lat,lng[,accuracy] (leave empty if unavailable)", os.Stdout)
	if err != nil {
		return err
	}
	loc, err := parseLocation(locText)
	if err != nil {
		fmt.Println("Could not parse location, submitting without one.")
		loc = nil
	}

	rec, err := a.attendance.CheckIn(ctx, sessionID, a.account.ID, token, secret, loc, "")
	if err != nil {
		return err
	}

	switch rec.Status {
	case models.StatusRejected:
		fmt.Printf("Check-in rejected: %s\n", rec.Reason)
	default:
		fmt.Printf("Checked in: %s\n", rec.Status)
	}
	return nil
}

// AddLeave collects a leave request and queues it for upload.
func (a *App) AddLeave(ctx context.Context) error {
	category, err := getSimpleText(a.reader, "Enter category (e.g. Medical Leave)", os.Stdout)
	if err != nil {
		return err
	}

	startText, err := getSimpleText(a.reader, "Enter start date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	start, err := time.Parse(dateLayout, startText)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	endText, err := getSimpleText(a.reader, "Enter end date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	end, err := time.Parse(dateLayout, endText)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("end date is before start date")
	}

	coursesText, err := getSimpleText(a.reader, "Enter affected course codes, comma separated", os.Stdout)
	if err != nil {
		return err
	}
	var courses []string
	for _, c := range strings.Split(coursesText, ",") {
		if c = strings.TrimSpace(c); c != "" {
			courses = append(courses, c)
		}
	}

	remarks, err := GetMultiline(a.reader, "Enter remarks", os.Stdout)
	if err != nil {
		return err
	}

	_, err = a.attendance.SubmitLeaveRequest(ctx, a.account.ID, category, start, end, courses, remarks, "")
	if err != nil {
		return err
	}

	fmt.Println("Leave request queued.")
	return nil
}

// Leaves prints the user's leave requests, newest first.
func (a *App) Leaves(ctx context.Context) error {
	requests, err := a.attendance.LeaveRequests(ctx, a.account.ID)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		fmt.Println("No leave requests.")
		return nil
	}

	for _, r := range requests {
		fmt.Printf("%s  %s  %s - %s  review:%s  sync:%s\n",
			r.ID, r.Category,
			r.StartDate.Format(dateLayout), r.EndDate.Format(dateLayout),
			r.ReviewStatus, r.SyncStatus)
	}
	return nil
}

// DeleteLeave removes a leave request; the remote copy is deleted on the
// next sync run.
func (a *App) DeleteLeave(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter leave request id", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.attendance.DeleteLeaveRequest(ctx, id); err != nil {
		return err
	}
	fmt.Println("Leave request deleted; remote delete queued.")
	return nil
}

// History prints the user's attendance records, newest first.
func (a *App) History(ctx context.Context) error {
	records, err := a.attendance.History(ctx, a.account.ID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No attendance history.")
		return nil
	}

	for _, r := range records {
		line := fmt.Sprintf("%s  session:%s  %s  %s  sync:%s",
			r.CheckInTime.Local().Format("2006-01-02 15:04"),
			r.SessionID, r.ID, r.Status, r.SyncStatus)
		if r.Reason != "" {
			line += "  (" + r.Reason + ")"
		}
		fmt.Println(line)
	}
	return nil
}

// Sync requests an immediate sync run.
func (a *App) Sync(ctx context.Context) error {
	a.scheduler.Kick()
	fmt.Println("Sync requested.")
	return nil
}

// parseLocation parses "lat,lng" or "lat,lng,accuracy". Empty input means
// no location was available.
func parseLocation(s string) (*models.LocationSample, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("expected lat,lng[,accuracy]")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude: %w", err)
	}

	loc := &models.LocationSample{Lat: lat, Lng: lng}
	if len(parts) == 3 {
		acc, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid accuracy: %w", err)
		}
		loc.AccuracyM = acc
	}
	return loc, nil
}
