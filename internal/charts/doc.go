// Package charts builds ECharts option objects for the dashboard: the
// sector treemap, the score histogram and the company trend line. Options
// are serialised to JSON and rendered in the browser.
package charts
