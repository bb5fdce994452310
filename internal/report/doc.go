// Package report renders finished crawl reports. Three formats share
// one Writer interface: plain text for terminals, JSON for machine
// consumption, and Markdown for documentation and sharing.
//
// Writers consume a classified, scored model.CrawlReport and never
// mutate it; callers sort the report before rendering if they want
// priority order.
package report
