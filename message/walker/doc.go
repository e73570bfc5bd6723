// Package walker visits the parts of a tree built by message.ParseMultipart in
// depth first order, telling the callback how deep each part is and where it
// sits among its siblings.
package walker
