// Package hcl_adapter reads HCL configuration files into a config.Model.
//
//	action "book-api" {
//	  factory = "http"
//	  config  = { endpoint = "http://books/{param.id}" }
//	}
//
//	task "books" {
//	  root = "fetch"
//	  node "fetch" {
//	    action = "book-api"
//	    on     = { "_success" = "render" }
//	  }
//	  node "render" {
//	    action = "render-body"
//	  }
//	}
//
// Node references inside a task are names; the loader resolves them into a
// graph of config.NodeOptions.
package hcl_adapter
