package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"leadcall_backend/internal/callqueue"
	"leadcall_backend/internal/leads/transport"
	"leadcall_backend/platform/validator"
)

// LeadLister selects leads for the queue.
type LeadLister interface {
	List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error)
}

func runQueue(ctx context.Context, args []string, queue *callqueue.Queue, leads LeadLister, val *validator.Validator) error {
	fs := flag.NewFlagSet("queue", flag.ContinueOnError)
	req := transport.ListLeadsRequest{Page: 1, SortBy: "lastCallAt", SortOrder: "asc"}
	fs.StringVar(&req.Status, "status", "new", "lead status to queue (empty for all)")
	fs.StringVar(&req.GroupID, "group", "", "group id, or none for ungrouped leads")
	fs.StringVar(&req.Industry, "industry", "", "industry filter")
	fs.StringVar(&req.Search, "search", "", "free text search")
	fs.IntVar(&req.Limit, "limit", 50, "maximum number of leads (1-200)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := val.Struct(req); err != nil {
		return fmt.Errorf("invalid filter: %v", validator.Messages(err))
	}

	list, err := leads.List(ctx, req)
	if err != nil {
		return err
	}

	entries := make([]callqueue.Entry, 0, len(list.Leads))
	for _, lead := range list.Leads {
		entries = append(entries, entryFromLead(lead))
	}
	if err := queue.Replace(ctx, entries); err != nil {
		return err
	}

	fmt.Printf("queued %d of %d matching leads\n", len(entries), list.Pagination.Total)
	return nil
}

func entryFromLead(lead transport.LeadResponse) callqueue.Entry {
	return callqueue.Entry{
		ID:           lead.ID,
		CompanyName:  lead.CompanyName,
		ContactName:  lead.ContactName,
		Salutation:   lead.Salutation,
		Phone:        lead.Phone,
		Email:        lead.Email,
		Website:      lead.Website,
		Industry:     lead.Industry,
		City:         lead.City,
		GroupID:      lead.GroupID,
		Status:       lead.Status,
		Product:      lead.Product,
		Notes:        lead.Notes,
		CallAttempts: lead.CallAttempts,
		LastCallAt:   lead.LastCallAt,
	}
}

func printQueue(w io.Writer, queue *callqueue.Queue) {
	if queue.Len() == 0 {
		fmt.Fprintln(w, "call queue is empty")
		return
	}
	for i, e := range queue.Entries() {
		marker := " "
		if i == queue.Index() {
			marker = ">"
		}
		fmt.Fprintf(w, "%s %3d  %-32s %-16s %s\n", marker, i+1, e.CompanyName, e.Phone, e.Status)
	}
}
