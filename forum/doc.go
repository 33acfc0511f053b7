// Package forum is the cache-aware client for the Hagelskott forum API.
//
// Service.GetCategories and Service.GetHotThreads serve from a cache.Loader
// and refetch when the entry is missing, expired or forced. When a refetch
// fails and earlier data exists, the earlier data is returned with
// Listing.Stale set. Successful mutations under /api/forum/categories
// invalidate the categories entry.
//
// BuildTree turns the flat category list into a hierarchy without
// recursion; Search, Flatten and Find walk that hierarchy with an explicit
// stack.
package forum
